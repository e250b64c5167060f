package ux

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StyleSet groups the lipgloss styles shared by CLI output and the dashboard.
type StyleSet struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
}

// Styles is the default style set.
var Styles = DefaultStyles()

// DefaultStyles returns the vendaa palette.
func DefaultStyles() StyleSet {
	return StyleSet{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Header:   lipgloss.NewStyle().Bold(true).Underline(true),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:    lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

// FormatBalance renders a wallet balance. nil means unknown and is shown
// differently from a zero balance.
func FormatBalance(balance *string) string {
	if balance == nil {
		return "unavailable"
	}
	return "₦" + *balance
}

// FormatAmount renders a naira amount with thousands separators, e.g.
// 5000 as "5,000.00".
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
