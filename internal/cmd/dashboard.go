package cmd

import (
	"context"
	stderrors "errors"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/metrics"
	"github.com/vendaa/vendaa/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive dashboard",
	Long: `Open a full-screen dashboard showing your organizations and the wallet
balance of the current one. Switch organizations, refresh the balance and
fund the wallet without leaving the terminal.

The dashboard closes when the session ends, including a logout from another
terminal.`,
	RunE: runE("dashboard", runDashboard),
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	if !tui.IsInteractive() {
		return errors.New(errors.ErrCodeInputInvalid, "the dashboard needs an interactive terminal").
			WithSuggestion("Use 'vendaa org list' and 'vendaa wallet balance' in scripts")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ended atomic.Bool
	app.Session.OnLogout(func() {
		ended.Store(true)
		cancel()
	})
	app.Session.OnExternalLogout(func() {
		app.Metrics.RecordLogout("external")
	})

	go func() {
		if err := app.Session.Watch(ctx); err != nil {
			app.Logger.WithError(err).Warn("session watch stopped")
		}
	}()

	if addr := app.Config.MetricsAddr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, app.Registry); err != nil {
				app.Logger.WithError(err).Warn("metrics endpoint stopped", "addr", addr)
			}
		}()
	}

	// The dashboard renders the loading state while the organizations load.
	go func() {
		if err := app.Orgs.Init(ctx); err != nil {
			app.Logger.WithError(err).Debug("organizations failed to load")
		}
	}()

	err := tui.Run(ctx, app.Orgs, app.TopUp, app.Client, tea.WithOutput(cmd.OutOrStdout()))
	if ended.Load() {
		return errors.NewAuthRequiredError()
	}
	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
