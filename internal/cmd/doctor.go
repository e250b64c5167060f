package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/config"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/health"
	"github.com/vendaa/vendaa/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run client diagnostics",
	Long: `Check that vendaa is ready to use.

Checks include:
  • Configuration (environment, backend URL, output format)
  • State file holding the session and selected organization
  • Backend reachability
  • Stored session validity

A rejected session is reported but not cleared.

Examples:
  vendaa doctor
  vendaa doctor -o json`,
	RunE: runPublicE("doctor", runDoctor),
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorReport is the machine-readable form of 'doctor'.
type doctorReport struct {
	Status health.Status   `json:"status" yaml:"status"`
	Checks []health.Report `json:"checks" yaml:"checks"`
}

func (r doctorReport) String() string {
	var b strings.Builder
	b.WriteString(ux.Styles.Title.Render("vendaa diagnostics") + "\n\n")
	var hints []string
	for _, c := range r.Checks {
		fmt.Fprintf(&b, "  %s %-11s %s\n", statusIcon(c.Result.Status), c.Name, c.Result.Message)
		if c.Result.Suggestion != "" {
			hints = append(hints, c.Result.Suggestion)
		}
	}
	if len(hints) > 0 {
		b.WriteString("\nNext steps:\n")
		for i, h := range hints {
			fmt.Fprintf(&b, "   %d. %s\n", i+1, h)
		}
	}
	switch r.Status {
	case health.StatusHealthy:
		b.WriteString("\n✓ vendaa is ready to use")
	case health.StatusDegraded:
		b.WriteString("\n⚠ vendaa works with limitations")
	default:
		b.WriteString("\n✗ vendaa has problems that need attention")
	}
	return b.String()
}

func statusIcon(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return "✓"
	case health.StatusDegraded:
		return "⚠"
	}
	return "✗"
}

func runDoctor(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	cfgFile, err := config.FilePath()
	if err != nil {
		return err
	}
	statePath, err := app.Config.StatePath()
	if err != nil {
		return err
	}

	manager := health.NewManager()
	manager.AddChecker(health.NewConfigChecker(app.Config, cfgFile))
	manager.AddChecker(health.NewStateChecker(app.Store, statePath))
	manager.AddChecker(health.NewBackendChecker(app.Client, app.Client.BaseURL()))
	manager.AddChecker(health.NewSessionChecker(app.Session, app.Client))

	reports := manager.Check(ctx)
	report := doctorReport{Status: health.Overall(reports), Checks: reports}
	for _, r := range reports {
		app.Logger.Debug("health check",
			"check", r.Name,
			"status", r.Result.Status.String(),
			"latency", r.Result.Latency)
	}

	if err := cc.Print(ux.View{Data: report, Text: report}); err != nil {
		return err
	}
	if report.Status == health.StatusUnhealthy {
		return errors.New(errors.ErrCodeConfigInvalid, "diagnostics found problems")
	}
	return nil
}
