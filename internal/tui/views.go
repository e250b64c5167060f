package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/organization"
	"github.com/vendaa/vendaa/internal/ux"
)

// View renders the dashboard (required by Bubble Tea)
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.currentView {
	case ViewTopUp:
		return m.renderTopUp()
	case ViewHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// renderMain renders the organization list and the wallet box
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Vendaa Dashboard"))
	b.WriteString("\n")

	if u := m.snap.User; u != nil {
		b.WriteString(m.styles.Muted.Render("Signed in as ") + m.styles.Subtitle.Render(userLine(u.FullName(), u.Email)))
		b.WriteString("\n\n")
	}

	switch {
	case m.snap.Loading():
		b.WriteString(m.spinner.View() + " " + m.styles.Status.Render("Loading organizations..."))
		b.WriteString("\n")
		b.WriteString(m.renderHelpLine())
		return b.String()

	case m.snap.State == organization.Failed:
		b.WriteString(m.styles.Error.Render("Session ended. Run 'vendaa auth login' to sign in again."))
		b.WriteString("\n")
		b.WriteString(m.renderHelpLine())
		return b.String()
	}

	if m.snap.Err != nil {
		b.WriteString(m.styles.Error.Render("Could not load your organizations: ") + formError(m.snap.Err))
		b.WriteString("\n\n")
	}

	if !m.snap.HasOrganizations() {
		b.WriteString(m.styles.Muted.Render("You do not belong to any organization yet."))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Create one with 'vendaa org create' or accept an invitation."))
		b.WriteString("\n")
		b.WriteString(m.renderHelpLine())
		return b.String()
	}

	b.WriteString(m.renderOrganizations())
	b.WriteString("\n\n")
	b.WriteString(m.renderWallet())

	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())
	return b.String()
}

func userLine(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// renderOrganizations renders one line per organization. The cursor row is
// highlighted and the selected organization is marked.
func (m Model) renderOrganizations() string {
	selected := m.snap.SelectedID()
	lines := make([]string, 0, len(m.snap.Organizations))

	for i, org := range m.snap.Organizations {
		marker := "  "
		if org.UUID == selected {
			marker = m.styles.Success.Render("● ")
		}

		line := org.Name
		if i == m.cursor {
			line = m.styles.Highlighted.Render(" " + line + " ")
		} else {
			line = " " + line + " "
		}
		lines = append(lines, marker+line)
	}

	return m.styles.Subtitle.Render("Organizations") + "\n" + strings.Join(lines, "\n")
}

// renderWallet renders the balance of the selected organization
func (m Model) renderWallet() string {
	var b strings.Builder

	name := "-"
	if m.snap.Selected != nil {
		name = m.snap.Selected.Name
	}
	b.WriteString(m.styles.Muted.Render("Organization: ") + name)
	b.WriteString("\n")

	balance := ux.FormatBalance(m.snap.Balance)
	if m.snap.Balance == nil {
		balance = m.styles.Muted.Render(balance)
	} else {
		balance = m.styles.Success.Render(balance)
	}
	b.WriteString(m.styles.Muted.Render("Balance:      ") + balance)
	if m.snap.BalanceLoading {
		b.WriteString(" " + m.spinner.View())
	}

	return m.styles.Border.Render(b.String())
}

// renderTopUp renders the funding dialog
func (m Model) renderTopUp() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Fund Wallet"))
	b.WriteString("\n")

	if m.snap.Selected != nil {
		b.WriteString(m.styles.Muted.Render("Organization: ") + m.snap.Selected.Name)
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.Muted.Render("Amount (₦): ") + m.form.amount.View())
	b.WriteString("\n")

	methods := make([]string, len(paymentMethods))
	for i, method := range paymentMethods {
		label := MethodLabel(method)
		if i == m.form.method {
			methods[i] = m.styles.Highlighted.Render(" " + label + " ")
		} else {
			methods[i] = " " + label + " "
		}
	}
	b.WriteString(m.styles.Muted.Render("Method:     ") + strings.Join(methods, " "))
	b.WriteString("\n")

	switch {
	case m.form.submitting:
		b.WriteString("\n" + m.styles.Status.Render("Requesting payment options..."))
	case m.form.err != "":
		b.WriteString("\n" + m.styles.Error.Render(m.form.err))
	case len(m.form.options) > 0:
		b.WriteString("\n" + m.renderPaymentOptions())
	}

	b.WriteString("\n")
	bindings := m.keys.dialogBindings()
	items := make([]string, len(bindings))
	for i, kb := range bindings {
		items[i] = m.styles.Key.Render(kb.Help().Key) + " " + kb.Help().Desc
	}
	b.WriteString(m.styles.Help.Render(strings.Join(items, " • ")))

	return m.styles.Border.Render(b.String())
}

func (m Model) renderPaymentOptions() string {
	var blocks []string
	for _, opt := range m.form.options {
		var lines []string
		switch {
		case opt.IsBankTransfer():
			lines = []string{
				m.styles.Subtitle.Render("Transfer to"),
				"Bank:      " + opt.BankName,
				"Account:   " + opt.AccountNumber,
				"Name:      " + opt.AccountName,
			}
			if opt.AccountReference != "" {
				lines = append(lines, "Reference: "+opt.AccountReference)
			}
		case opt.IsOnlineCheckout():
			lines = []string{
				m.styles.Subtitle.Render("Pay online"),
				opt.PaymentURL,
			}
		default:
			lines = []string{opt.PaymentGateway}
		}
		if opt.Fee != "" {
			lines = append(lines, m.styles.Muted.Render("Fee: ₦"+opt.Fee))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// MethodLabel is the human name of a payment method.
func MethodLabel(method string) string {
	switch method {
	case api.PaymentBankTransfer:
		return "Bank transfer"
	case api.PaymentOnlineCheckout:
		return "Online checkout"
	}
	return method
}

// renderHelp renders the help view
func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Help"))
	b.WriteString("\n")

	for _, kb := range m.keys.helpBindings() {
		keyText := m.styles.Key.Render(fmt.Sprintf("%-10s", kb.Help().Key))
		descText := m.styles.KeyDesc.Render(kb.Help().Desc)
		b.WriteString(keyText + " " + descText)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Press ? or Esc to return to main view"))

	return b.String()
}

// renderHelpLine renders the help line at the bottom
func (m Model) renderHelpLine() string {
	helpItems := []string{
		m.styles.Key.Render("↑↓") + " move",
		m.styles.Key.Render("enter") + " switch",
		m.styles.Key.Render("r") + " refresh",
		m.styles.Key.Render("t") + " top up",
		m.styles.Key.Render("?") + " help",
		m.styles.Key.Render("q") + " quit",
	}

	return m.styles.Help.Render(strings.Join(helpItems, " • "))
}
