package tui

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/notify"
	"github.com/vendaa/vendaa/internal/organization"
	"github.com/vendaa/vendaa/internal/topup"
)

type fakeOrgs struct {
	snap     organization.Snapshot
	broker   *notify.Broker
	switched []string
	refetch  int
}

func newFakeOrgs(snap organization.Snapshot) *fakeOrgs {
	return &fakeOrgs{snap: snap, broker: notify.NewBroker()}
}

func (f *fakeOrgs) Snapshot() organization.Snapshot { return f.snap }
func (f *fakeOrgs) Subscribe() (<-chan struct{}, func()) { return f.broker.Subscribe() }

func (f *fakeOrgs) Switch(_ context.Context, id string) bool {
	for _, org := range f.snap.Organizations {
		if org.UUID == id {
			f.switched = append(f.switched, id)
			return true
		}
	}
	return false
}

func (f *fakeOrgs) RefetchBalance(context.Context) bool {
	if f.snap.Selected == nil {
		return false
	}
	f.refetch++
	return true
}

type fakePayer struct {
	options []api.PaymentOption
	err     error

	orgID  string
	method string
	amount float64
}

func (p *fakePayer) InitiatePayment(_ context.Context, orgID, method string, amount float64) ([]api.PaymentOption, error) {
	p.orgID, p.method, p.amount = orgID, method, amount
	return p.options, p.err
}

func strPtr(s string) *string { return &s }

func readySnapshot(selected int, balance *string) organization.Snapshot {
	orgs := []api.Organization{
		{UUID: "org-a", Name: "Acme"},
		{UUID: "org-b", Name: "Globex"},
		{UUID: "org-c", Name: "Initech"},
	}
	sel := orgs[selected]
	return organization.Snapshot{
		State:         organization.Ready,
		User:          &api.User{Email: "ada@example.com", FirstName: "Ada"},
		Organizations: orgs,
		Selected:      &sel,
		Balance:       balance,
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(keyPress(k))
		m = updated.(Model)
	}
	return m, cmd
}

func newTestModel(snap organization.Snapshot) (Model, *fakeOrgs, *topup.Coordinator, *fakePayer) {
	orgs := newFakeOrgs(snap)
	dialog := topup.New()
	payer := &fakePayer{}
	return NewModel(context.Background(), orgs, dialog, payer), orgs, dialog, payer
}

// TestNewModel tests model initialization
func TestNewModel(t *testing.T) {
	model, orgs, _, _ := newTestModel(readySnapshot(1, strPtr("100.00")))

	if model.currentView != ViewMain {
		t.Errorf("Expected ViewMain, got %v", model.currentView)
	}
	if model.cursor != 1 {
		t.Errorf("Expected cursor on the selected organization, got %d", model.cursor)
	}
	if orgs.broker.Len() != 1 {
		t.Errorf("Expected one subscription, got %d", orgs.broker.Len())
	}
	if model.Init() == nil {
		t.Error("Expected Init to return a listen command")
	}
}

func TestNewModelWithOpenDialog(t *testing.T) {
	orgs := newFakeOrgs(readySnapshot(0, nil))
	dialog := topup.New()
	dialog.Open()

	model := NewModel(context.Background(), orgs, dialog, &fakePayer{})
	if model.currentView != ViewTopUp {
		t.Errorf("Expected ViewTopUp when the dialog is already open, got %v", model.currentView)
	}
}

func TestCursorMovement(t *testing.T) {
	model, _, _, _ := newTestModel(readySnapshot(0, nil))

	tests := []struct {
		keys []string
		want int
	}{
		{[]string{"up"}, 0},
		{[]string{"down"}, 1},
		{[]string{"down", "down", "down", "down"}, 2},
		{[]string{"j", "j", "k"}, 1},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, ","), func(t *testing.T) {
			m, _ := press(t, model, tt.keys...)
			if m.cursor != tt.want {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.want)
			}
		})
	}
}

func TestEnterSwitchesOrganization(t *testing.T) {
	model, orgs, _, _ := newTestModel(readySnapshot(0, nil))

	m, _ := press(t, model, "down", "down", "enter")

	if len(orgs.switched) != 1 || orgs.switched[0] != "org-c" {
		t.Fatalf("Expected a switch to org-c, got %v", orgs.switched)
	}
	if m.status != "Switched to Initech" {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestRefreshKey(t *testing.T) {
	model, orgs, _, _ := newTestModel(readySnapshot(0, nil))

	m, _ := press(t, model, "r")

	if orgs.refetch != 1 {
		t.Errorf("Expected one refetch, got %d", orgs.refetch)
	}
	if m.status != "Refreshing balance" {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestOrganizationsChangedMsg(t *testing.T) {
	model, orgs, _, _ := newTestModel(readySnapshot(0, nil))

	orgs.snap = readySnapshot(2, strPtr("0.00"))
	updated, cmd := model.Update(OrganizationsChangedMsg{})
	m := updated.(Model)

	if cmd == nil {
		t.Error("Expected the subscription to be re-armed")
	}
	if m.Snapshot().SelectedID() != "org-c" {
		t.Errorf("Expected org-c selected, got %q", m.Snapshot().SelectedID())
	}
	if m.cursor != 2 {
		t.Errorf("Expected cursor to follow the selection, got %d", m.cursor)
	}
	if !strings.Contains(m.View(), "₦0.00") {
		t.Errorf("Expected zero balance to be rendered:\n%s", m.View())
	}
}

func TestCursorClampedWhenListShrinks(t *testing.T) {
	model, orgs, _, _ := newTestModel(readySnapshot(2, nil))

	snap := readySnapshot(0, nil)
	snap.Organizations = snap.Organizations[:1]
	orgs.snap = snap
	updated, _ := model.Update(OrganizationsChangedMsg{})

	if c := updated.(Model).cursor; c != 0 {
		t.Errorf("Expected cursor 0, got %d", c)
	}
}

func TestTopUpDialog(t *testing.T) {
	model, _, dialog, _ := newTestModel(readySnapshot(0, nil))

	m, _ := press(t, model, "t")
	if !dialog.IsOpen() {
		t.Fatal("Expected the dialog to be open")
	}
	if m.currentView != ViewTopUp {
		t.Fatalf("Expected ViewTopUp, got %v", m.currentView)
	}

	// q is not a quit key while the dialog has focus.
	m, cmd := press(t, m, "q")
	if m.quitting || cmd != nil {
		t.Error("Expected q to be ignored inside the dialog")
	}

	m, _ = press(t, m, "esc")
	if dialog.IsOpen() {
		t.Error("Expected esc to close the dialog")
	}
	if m.currentView != ViewMain {
		t.Errorf("Expected ViewMain, got %v", m.currentView)
	}
}

func TestTopUpRequiresSelection(t *testing.T) {
	model, _, dialog, _ := newTestModel(organization.Snapshot{State: organization.Ready})

	m, _ := press(t, model, "t")

	if dialog.IsOpen() {
		t.Error("Expected the dialog to stay closed without a selected organization")
	}
	if m.status == "" {
		t.Error("Expected a status message")
	}
}

func TestDialogOpenedElsewhere(t *testing.T) {
	model, _, dialog, _ := newTestModel(readySnapshot(0, nil))

	dialog.Open()
	updated, cmd := model.Update(DialogChangedMsg{})
	m := updated.(Model)

	if m.currentView != ViewTopUp {
		t.Errorf("Expected ViewTopUp, got %v", m.currentView)
	}
	if cmd == nil {
		t.Error("Expected the subscription to be re-armed")
	}
}

func TestTopUpValidation(t *testing.T) {
	model, _, _, payer := newTestModel(readySnapshot(0, nil))

	tests := []struct {
		name    string
		keys    []string
		wantErr string
	}{
		{"empty amount", []string{"enter"}, "please enter an amount"},
		{"below minimum", []string{"9", "9", "9", "enter"}, "below the minimum"},
		{"letters ignored", []string{"a", "b", "enter"}, "please enter an amount"},
		{"backspace", []string{"5", "0", "0", "0", "backspace", "enter"}, "below the minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := press(t, model, "t")
			m, cmd := press(t, m, tt.keys...)
			if cmd != nil {
				t.Error("Expected no request for an invalid form")
			}
			if !strings.Contains(m.form.err, tt.wantErr) {
				t.Errorf("form error = %q, want it to contain %q", m.form.err, tt.wantErr)
			}
		})
	}

	if payer.orgID != "" {
		t.Error("Expected no payment request")
	}
}

func TestTopUpAmountInput(t *testing.T) {
	model, _, _, _ := newTestModel(readySnapshot(0, nil))

	m, _ := press(t, model, "t", "5", "x", "0", "0")
	if got := m.form.amount.Value(); got != "500" {
		t.Fatalf("amount = %q, want letters dropped", got)
	}

	// Editing happens at the cursor, not only at the end.
	m, _ = press(t, m, "left", "0")
	if got := m.form.amount.Value(); got != "5000" {
		t.Errorf("amount = %q after inserting before the last digit", got)
	}

	m, _ = press(t, m, "esc", "t")
	if got := m.form.amount.Value(); got != "" {
		t.Errorf("amount = %q, want a fresh form after reopening", got)
	}
}

func TestTopUpSubmit(t *testing.T) {
	model, _, _, payer := newTestModel(readySnapshot(1, strPtr("10.00")))
	payer.options = []api.PaymentOption{{
		PaymentGateway: "paystack",
		BankName:       "Wema Bank",
		AccountNumber:  "0123456789",
		AccountName:    "Vendaa/Globex",
		Fee:            "50.00",
	}}

	m, _ := press(t, model, "t", "5", ",", "0", "0", "0", "tab")
	if m.form.methodName() != api.PaymentOnlineCheckout {
		t.Fatalf("Expected tab to select online checkout, got %s", m.form.methodName())
	}
	m, _ = press(t, m, "tab")

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("Expected a payment request command")
	}
	if !m.form.submitting {
		t.Error("Expected the form to be submitting")
	}

	msg := cmd()
	if payer.orgID != "org-b" || payer.method != api.PaymentBankTransfer || payer.amount != 5000 {
		t.Errorf("Unexpected request: org=%s method=%s amount=%v", payer.orgID, payer.method, payer.amount)
	}

	updated, _ := m.Update(msg)
	m = updated.(Model)
	if m.form.submitting {
		t.Error("Expected submitting to be cleared")
	}
	if !strings.Contains(m.View(), "0123456789") {
		t.Errorf("Expected account number in view:\n%s", m.View())
	}
}

func TestTopUpSubmitError(t *testing.T) {
	model, _, _, payer := newTestModel(readySnapshot(0, nil))
	payer.err = &api.Error{Status: 400, Message: "Amount too large"}

	m, _ := press(t, model, "t", "2", "0", "0", "0")
	m, cmd := press(t, m, "enter")
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	if m.form.err != "Amount too large" {
		t.Errorf("form error = %q", m.form.err)
	}
}

func TestQuitReleasesSubscriptions(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			model, orgs, _, _ := newTestModel(readySnapshot(0, nil))

			m, cmd := press(t, model, k)
			if !m.quitting {
				t.Error("Expected quitting to be true")
			}
			if cmd == nil {
				t.Fatal("Expected quit command")
			}
			if orgs.broker.Len() != 0 {
				t.Errorf("Expected subscriptions released, got %d", orgs.broker.Len())
			}
			if m.View() != "" {
				t.Error("Expected empty view after quitting")
			}
		})
	}
}

func TestHelpToggle(t *testing.T) {
	model, _, _, _ := newTestModel(readySnapshot(0, nil))

	m, _ := press(t, model, "?")
	if m.currentView != ViewHelp {
		t.Errorf("Expected ViewHelp, got %v", m.currentView)
	}
	if !strings.Contains(m.View(), "Refresh balance") {
		t.Error("Help view missing refresh key")
	}

	m, _ = press(t, m, "?")
	if m.currentView != ViewMain {
		t.Errorf("Expected ViewMain, got %v", m.currentView)
	}
}

func TestViewStates(t *testing.T) {
	tests := []struct {
		name string
		snap organization.Snapshot
		want []string
	}{
		{
			name: "loading",
			snap: organization.Snapshot{State: organization.Loading},
			want: []string{"Loading organizations"},
		},
		{
			name: "failed",
			snap: organization.Snapshot{State: organization.Failed},
			want: []string{"vendaa auth login"},
		},
		{
			name: "no organizations",
			snap: organization.Snapshot{State: organization.Ready},
			want: []string{"do not belong to any organization"},
		},
		{
			name: "degraded",
			snap: organization.Snapshot{State: organization.Ready, Err: stderrors.New("backend down")},
			want: []string{"Could not load your organizations", "backend down"},
		},
		{
			name: "unknown balance",
			snap: readySnapshot(0, nil),
			want: []string{"Acme", "Globex", "unavailable", "Signed in as"},
		},
		{
			name: "balance",
			snap: readySnapshot(0, strPtr("2500.00")),
			want: []string{"₦2500.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, _, _, _ := newTestModel(tt.snap)
			view := model.View()
			for _, want := range tt.want {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q:\n%s", want, view)
				}
			}
		})
	}
}

func TestBalanceSpinner(t *testing.T) {
	snap := readySnapshot(0, nil)
	snap.BalanceLoading = true
	model, orgs, _, _ := newTestModel(snap)

	if !model.spinning {
		t.Fatal("Expected the spinner to run while the balance loads")
	}

	updated, cmd := model.Update(model.spinner.Tick())
	m := updated.(Model)
	if cmd == nil {
		t.Error("Expected the spinner to keep ticking while loading")
	}

	orgs.snap.BalanceLoading = false
	orgs.snap.Balance = strPtr("10.00")
	updated, _ = m.Update(OrganizationsChangedMsg{})
	m = updated.(Model)

	updated, cmd = m.Update(m.spinner.Tick())
	m = updated.(Model)
	if cmd != nil {
		t.Error("Expected the spinner to stop once the balance arrived")
	}
	if m.spinning {
		t.Error("Expected spinning to be cleared")
	}

	// A new fetch restarts it.
	orgs.snap.BalanceLoading = true
	updated, cmd = m.Update(OrganizationsChangedMsg{})
	m = updated.(Model)
	if !m.spinning || cmd == nil {
		t.Error("Expected the spinner to restart when a fetch begins")
	}
}

func TestSpinnerIdleWhenNothingLoads(t *testing.T) {
	model, _, _, _ := newTestModel(readySnapshot(0, strPtr("1.00")))
	if model.spinning {
		t.Error("Expected no spinner without pending work")
	}
	if _, cmd := model.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("Expected a stray tick to be dropped")
	}
}

func TestListenStopsOnClose(t *testing.T) {
	ch := make(chan struct{}, 1)
	cmd := listen(ch, OrganizationsChangedMsg{})

	ch <- struct{}{}
	if _, ok := cmd().(OrganizationsChangedMsg); !ok {
		t.Error("Expected OrganizationsChangedMsg")
	}

	close(ch)
	if msg := cmd(); msg != nil {
		t.Errorf("Expected nil message on a closed channel, got %T", msg)
	}

	if listen(nil, OrganizationsChangedMsg{}) != nil {
		t.Error("Expected nil command for a nil channel")
	}
}
