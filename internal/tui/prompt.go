package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/topup"
)

// Credentials collects an email and password. Fields already set are kept
// as defaults.
type Credentials struct {
	Email    string
	Password string
}

// PromptForCredentials displays the login form.
func PromptForCredentials(c *Credentials) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&c.Email).
			Validate(func(s string) error {
				return api.LoginRequest{Email: s, Password: "-"}.Validate()
			}),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&c.Password),
	))

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// TopUpInput is what the funding form collects.
type TopUpInput struct {
	Amount string
	Method string
}

// PromptForTopUp displays the funding form. The amount is validated against
// the minimum before the form can be submitted.
func PromptForTopUp(in *TopUpInput) error {
	if in.Method == "" {
		in.Method = api.PaymentBankTransfer
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Amount (₦)").
			Description(fmt.Sprintf("Minimum %d", topup.MinimumAmount)).
			Value(&in.Amount).
			Validate(func(s string) error {
				amount, err := topup.ParseAmount(s)
				if err != nil {
					return fmt.Errorf("%s", formError(err))
				}
				if amount < topup.MinimumAmount {
					return fmt.Errorf("minimum amount is %d", topup.MinimumAmount)
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("Payment method").
			Options(
				huh.NewOption(MethodLabel(api.PaymentBankTransfer), api.PaymentBankTransfer),
				huh.NewOption(MethodLabel(api.PaymentOnlineCheckout), api.PaymentOnlineCheckout),
			).
			Value(&in.Method),
	))

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ciEnvVars are set by common CI systems.
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"BUILDKITE",
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}
	return IsInteractive()
}
