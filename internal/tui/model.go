package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/organization"
	"github.com/vendaa/vendaa/internal/topup"
)

// ViewType represents the current view being displayed
type ViewType int

// View type constants
const (
	// ViewMain shows the organizations and the wallet
	ViewMain ViewType = iota
	// ViewTopUp is the funding dialog
	ViewTopUp
	// ViewHelp is the help screen
	ViewHelp
)

// Organizations is the part of the organization coordinator the dashboard
// drives.
type Organizations interface {
	Snapshot() organization.Snapshot
	Subscribe() (<-chan struct{}, func())
	Switch(ctx context.Context, orgID string) bool
	RefetchBalance(ctx context.Context) bool
}

// Dialog is the shared funding dialog switch.
type Dialog interface {
	Open()
	Close()
	IsOpen() bool
	Subscribe() (<-chan struct{}, func())
}

// Payer lists payment options for a funding request.
type Payer interface {
	InitiatePayment(ctx context.Context, orgID, method string, amount float64) ([]api.PaymentOption, error)
}

// Model is the dashboard state
type Model struct {
	ctx    context.Context
	orgs   Organizations
	dialog Dialog
	payer  Payer

	orgUpdates    <-chan struct{}
	dialogUpdates <-chan struct{}
	cancels       []func()

	snap   organization.Snapshot
	cursor int
	form   topUpForm

	// spinner animates while organizations or the balance load. spinning is
	// true while a tick is outstanding.
	spinner  spinner.Model
	spinning bool

	// UI state
	currentView ViewType
	width       int
	height      int
	quitting    bool
	status      string

	keys   keyMap
	styles Styles
}

// Styles contains lipgloss styles for the dashboard
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style
}

// NewModel creates a dashboard bound to the organization coordinator and the
// funding dialog. Subscriptions are released when the model quits.
func NewModel(ctx context.Context, orgs Organizations, dialog Dialog, payer Payer) Model {
	m := Model{
		ctx:         ctx,
		orgs:        orgs,
		dialog:      dialog,
		payer:       payer,
		form:        newTopUpForm(),
		currentView: ViewMain,
		keys:        dashboardKeys,
		styles:      DefaultStyles(),
	}
	m.spinner = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(m.styles.Status),
	)

	var cancel func()
	m.orgUpdates, cancel = orgs.Subscribe()
	m.cancels = append(m.cancels, cancel)
	m.dialogUpdates, cancel = dialog.Subscribe()
	m.cancels = append(m.cancels, cancel)

	m.applySnapshot(orgs.Snapshot())
	m.spinning = m.loading()
	if dialog.IsOpen() {
		m.currentView = ViewTopUp
	}
	return m
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("42")).
			Foreground(lipgloss.Color("230")).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// Custom messages

// OrganizationsChangedMsg is sent when the organization coordinator published
// a change.
type OrganizationsChangedMsg struct{}

// DialogChangedMsg is sent when the funding dialog opened or closed.
type DialogChangedMsg struct{}

// PaymentOptionsMsg carries the result of a funding request.
type PaymentOptionsMsg struct {
	Options []api.PaymentOption
	Err     error
}

// listen blocks until ch is signalled and then reports msg. A closed channel
// ends the subscription.
func listen(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

// Init starts listening for coordinator changes (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listen(m.orgUpdates, OrganizationsChangedMsg{}),
		listen(m.dialogUpdates, DialogChangedMsg{}),
	}
	if m.spinning {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// loading reports whether anything on screen is waiting for the backend.
func (m Model) loading() bool {
	return m.snap.Loading() || m.snap.BalanceLoading
}

// startSpinner returns a tick command when loading began and no tick is
// outstanding.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.loading() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case OrganizationsChangedMsg:
		m.applySnapshot(m.orgs.Snapshot())
		tick := m.startSpinner()
		return m, tea.Batch(listen(m.orgUpdates, OrganizationsChangedMsg{}), tick)

	case spinner.TickMsg:
		if !m.loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DialogChangedMsg:
		m.syncDialog()
		return m, listen(m.dialogUpdates, DialogChangedMsg{})

	case PaymentOptionsMsg:
		m.form.submitting = false
		if msg.Err != nil {
			m.form.err = formError(msg.Err)
			return m, nil
		}
		m.form.options = msg.Options
		m.form.err = ""
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.currentView == ViewTopUp {
		return m.handleTopUpKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = ViewMain
		} else {
			m.currentView = ViewHelp
		}

	case key.Matches(msg, m.keys.Back):
		m.currentView = ViewMain

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Organizations)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Switch):
		if m.cursor < len(m.snap.Organizations) {
			org := m.snap.Organizations[m.cursor]
			if m.orgs.Switch(m.ctx, org.UUID) {
				m.status = "Switched to " + org.Name
			}
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.orgs.RefetchBalance(m.ctx) {
			m.status = "Refreshing balance"
		}

	case key.Matches(msg, m.keys.TopUp):
		if m.snap.Selected == nil {
			m.status = "Select an organization before topping up"
			return m, nil
		}
		m.dialog.Open()
		m.syncDialog()
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	return m, tea.Quit
}

// applySnapshot stores snap and keeps the cursor on a valid row, following
// the selected organization when the list changes.
func (m *Model) applySnapshot(snap organization.Snapshot) {
	prev := m.snap.SelectedID()
	m.snap = snap

	if sel := snap.SelectedID(); sel != "" && sel != prev {
		for i, org := range snap.Organizations {
			if org.UUID == sel {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor >= len(snap.Organizations) {
		m.cursor = max(len(snap.Organizations)-1, 0)
	}
}

// syncDialog mirrors the shared dialog flag into the current view.
func (m *Model) syncDialog() {
	open := m.dialog.IsOpen()
	switch {
	case open && m.currentView != ViewTopUp:
		m.form = newTopUpForm()
		m.currentView = ViewTopUp
	case !open && m.currentView == ViewTopUp:
		m.currentView = ViewMain
	}
}

// Snapshot returns the organization state the dashboard last rendered.
func (m Model) Snapshot() organization.Snapshot {
	return m.snap
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, orgs Organizations, dialog Dialog, payer Payer, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(ctx, orgs, dialog, payer), opts...)
	_, err := p.Run()
	return err
}

var _ Organizations = (*organization.Coordinator)(nil)
var _ Dialog = (*topup.Coordinator)(nil)
var _ Payer = (*api.Client)(nil)
