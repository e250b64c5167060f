package tui

import (
	stderrors "errors"
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/topup"
)

var paymentMethods = []string{api.PaymentBankTransfer, api.PaymentOnlineCheckout}

// topUpForm is the input state of the funding dialog.
type topUpForm struct {
	amount     textinput.Model
	method     int
	submitting bool
	err        string
	options    []api.PaymentOption
}

func newTopUpForm() topUpForm {
	amount := textinput.New()
	amount.Prompt = ""
	amount.Placeholder = fmt.Sprintf("minimum %d", topup.MinimumAmount)
	amount.CharLimit = 16
	amount.Width = 20
	amount.Cursor.SetMode(cursor.CursorStatic)
	amount.Focus()
	return topUpForm{amount: amount}
}

func (f topUpForm) methodName() string {
	return paymentMethods[f.method]
}

// request parses and validates the form.
func (f topUpForm) request() (topup.Request, error) {
	amount, err := topup.ParseAmount(f.amount.Value())
	if err != nil {
		return topup.Request{}, err
	}
	req := topup.Request{Amount: amount, Method: f.methodName()}
	if err := req.Validate(); err != nil {
		return topup.Request{}, err
	}
	return req, nil
}

func (m Model) handleTopUpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.dialog.Close()
		m.syncDialog()
		return m, nil

	case key.Matches(msg, m.keys.Method):
		m.form.method = (m.form.method + 1) % len(paymentMethods)
		m.form.options = nil
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submitTopUp()
	}

	if msg.Type == tea.KeyRunes {
		msg.Runes = amountRunes(msg.Runes)
		if len(msg.Runes) == 0 {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.form.amount, cmd = m.form.amount.Update(msg)
	m.form.err = ""
	return m, cmd
}

// amountRunes keeps the characters an amount may contain.
func amountRunes(runes []rune) []rune {
	kept := runes[:0:0]
	for _, r := range runes {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			kept = append(kept, r)
		}
	}
	return kept
}

func (m Model) submitTopUp() (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	orgID := m.snap.SelectedID()
	if orgID == "" {
		m.form.err = "No organization selected"
		return m, nil
	}
	req, err := m.form.request()
	if err != nil {
		m.form.err = formError(err)
		return m, nil
	}

	m.form.submitting = true
	m.form.err = ""
	ctx, payer := m.ctx, m.payer
	return m, func() tea.Msg {
		options, err := payer.InitiatePayment(ctx, orgID, req.Method, req.Amount)
		return PaymentOptionsMsg{Options: options, Err: err}
	}
}

// formError returns the one-line message shown under the form.
func formError(err error) string {
	var vErr *errors.VendaaError
	if stderrors.As(err, &vErr) {
		return vErr.Message
	}
	return api.Message(err)
}
