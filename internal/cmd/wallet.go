package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/topup"
	"github.com/vendaa/vendaa/internal/tui"
	"github.com/vendaa/vendaa/internal/ux"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show and fund the current organization's wallet",
	Long: `Show the wallet balance of the current organization and request payment
details to fund it.

Examples:
  vendaa wallet balance
  vendaa wallet topup --amount 5000 --method bank_transfer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet balance",
	RunE:  runE("wallet.balance", runWalletBalance),
}

var walletTopUpCmd = &cobra.Command{
	Use:     "topup",
	Aliases: []string{"fund"},
	Short:   "Request payment details to fund the wallet",
	Long: fmt.Sprintf(`Request payment details to fund the current organization's wallet.

The minimum amount is ₦%d. With bank_transfer you receive an account to pay
into; with online_checkout you receive a checkout link. The balance updates
once the payment is confirmed.

When --amount is omitted in an interactive terminal, a form asks for it.`, topup.MinimumAmount),
	RunE: runE("wallet.topup", runWalletTopUp),
}

func init() {
	walletCmd.AddCommand(walletBalanceCmd)
	walletCmd.AddCommand(walletTopUpCmd)

	walletTopUpCmd.Flags().String("amount", "", "Amount in NGN")
	walletTopUpCmd.Flags().String("method", "", "Payment method: bank_transfer or online_checkout")

	rootCmd.AddCommand(walletCmd)
}

func runWalletBalance(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := app.loadOrganizations(ctx); err != nil {
		return err
	}

	cur, err := currentOf(app.Orgs.Snapshot())
	if err != nil {
		return err
	}
	if cur.Balance == nil {
		return errors.NewWalletUnavailableError(cur.Organization.UUID)
	}
	return cc.Print(ux.View{Data: cur, Text: cur})
}

// topUpResult is the machine-readable form of 'wallet topup'.
type topUpResult struct {
	Organization *api.Organization   `json:"organization" yaml:"organization"`
	Amount       float64             `json:"amount" yaml:"amount"`
	Method       string              `json:"method" yaml:"method"`
	Options      []api.PaymentOption `json:"options" yaml:"options"`
}

func (r topUpResult) String() string {
	if len(r.Options) == 0 {
		return "No payment options are available right now. Try another method."
	}
	blocks := make([]string, 0, len(r.Options))
	for _, opt := range r.Options {
		blocks = append(blocks, paymentOptionText(opt))
	}
	return strings.Join(blocks, "\n\n")
}

func paymentOptionText(opt api.PaymentOption) string {
	var lines []string
	switch {
	case opt.IsBankTransfer():
		lines = []string{
			"Bank:      " + opt.BankName,
			"Account:   " + opt.AccountNumber,
			"Name:      " + opt.AccountName,
		}
		if opt.AccountReference != "" {
			lines = append(lines, "Reference: "+opt.AccountReference)
		}
	case opt.IsOnlineCheckout():
		lines = []string{
			"Gateway:   " + opt.PaymentGateway,
			"Pay at:    " + opt.PaymentURL,
		}
	default:
		lines = []string{"Gateway:   " + opt.PaymentGateway}
	}
	if opt.Amount != "" {
		lines = append(lines, "Amount:    ₦"+opt.Amount)
	}
	if opt.Fee != "" {
		lines = append(lines, "Fee:       ₦"+opt.Fee)
	}
	return strings.Join(lines, "\n")
}

func runWalletTopUp(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := app.loadOrganizations(ctx); err != nil {
		return err
	}
	cur, err := currentOf(app.Orgs.Snapshot())
	if err != nil {
		return err
	}

	in := tui.TopUpInput{}
	in.Amount, _ = cmd.Flags().GetString("amount")
	in.Method, _ = cmd.Flags().GetString("method")

	app.TopUp.Open()
	defer app.TopUp.Close()

	if in.Amount == "" && tui.ShouldPrompt() && !cc.Structured() {
		if err := tui.PromptForTopUp(&in); err != nil {
			return err
		}
	}
	if in.Method == "" {
		in.Method = api.PaymentBankTransfer
	}

	amount, err := topup.ParseAmount(in.Amount)
	if err != nil {
		return err
	}
	req := topup.Request{Amount: amount, Method: in.Method}
	if err := req.Validate(); err != nil {
		return err
	}

	options, err := app.Client.InitiatePayment(ctx, cur.Organization.UUID, req.Method, req.Amount)
	if err != nil {
		return err
	}
	if options == nil {
		options = []api.PaymentOption{}
	}

	cc.Notice("%s to fund %s with ₦%s:", tui.MethodLabel(req.Method), cur.Organization.Name, ux.FormatAmount(req.Amount))
	return cc.Print(ux.View{
		Data: topUpResult{Organization: cur.Organization, Amount: req.Amount, Method: req.Method, Options: options},
		Text: topUpResult{Options: options},
	})
}
