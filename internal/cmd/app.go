package cmd

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/config"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/log"
	"github.com/vendaa/vendaa/internal/metrics"
	"github.com/vendaa/vendaa/internal/organization"
	"github.com/vendaa/vendaa/internal/session"
	"github.com/vendaa/vendaa/internal/storage"
	"github.com/vendaa/vendaa/internal/telemetry"
	"github.com/vendaa/vendaa/internal/topup"
)

// App is the object graph shared by all commands: one store, one session,
// one API client and one coordinator per process.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Store    storage.Store
	Session  *session.Store
	Client   *api.Client
	Orgs     *organization.Coordinator
	TopUp    *topup.Coordinator
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// newStore opens the state store. Tests replace it with an in-memory store.
var newStore = func(path string) storage.Store {
	return storage.NewFileStore(path)
}

// newApp wires the application from the loaded configuration.
func newApp() (*App, error) {
	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}
	statePath, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}

	logger := log.DefaultLogger()
	reg, m := metrics.NewRegistry()
	store := newStore(statePath)
	sess := session.New(store, logger)

	client := api.NewClient(baseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithTokenSource(sess),
		api.WithRateLimit(cfg.RateLimit, max(int(cfg.RateLimit), 1)),
		api.WithLogger(logger),
		api.WithObserver(m),
	)

	orgs := organization.New(client, sess, store,
		organization.WithLogger(logger),
		organization.WithMetrics(m),
	)
	sess.OnLogout(orgs.Reset)

	logger.Debug("client configured",
		"environment", cfg.Environment,
		"base_url", baseURL,
		"state_file", statePath)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Session:  sess,
		Client:   client,
		Orgs:     orgs,
		TopUp:    topup.New(),
		Metrics:  m,
		Registry: reg,
	}, nil
}

// requireSession fails fast when no access token is stored.
func (a *App) requireSession() error {
	if !a.Session.IsAuthenticated() {
		return errors.NewAuthRequiredError()
	}
	return nil
}

// loadOrganizations initializes the coordinator and waits for the balance
// of the selected organization. A 401 has already logged the session out.
func (a *App) loadOrganizations(ctx context.Context) error {
	err := a.Orgs.Init(ctx)
	a.Orgs.Wait()
	return err
}

// handleUnauthorized ends the session after the backend rejected the token
// outside the coordinator.
func (a *App) handleUnauthorized(err error) error {
	var vErr *errors.VendaaError
	if stderrors.As(err, &vErr) && vErr.Code == errors.ErrCodeAuthFailed {
		return err
	}
	if !api.IsUnauthorized(err) {
		return err
	}
	a.Metrics.RecordLogout("unauthorized")
	if lerr := a.Session.Logout(); lerr != nil {
		a.Logger.WithError(lerr).Warn("failed to clear session")
	}
	return errors.NewSessionExpiredError(err)
}

type commandFunc func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error

// runE adapts a command body that needs a logged-in session. A 401 from the
// backend ends the session.
func runE(name string, fn commandFunc) func(*cobra.Command, []string) error {
	return run(name, true, fn)
}

// runPublicE adapts a command body that works without a session (login,
// registration, OTP).
func runPublicE(name string, fn commandFunc) func(*cobra.Command, []string) error {
	return run(name, false, fn)
}

// run builds the app, opens a command span and records the command metric.
func run(name string, authenticated bool, fn commandFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if authenticated {
			if err := app.requireSession(); err != nil {
				return err
			}
		}

		ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
		defer span.End()

		start := time.Now()
		err = fn(ctx, cmd, app, args)
		app.Orgs.Wait()
		app.Metrics.RecordCommand(name, err == nil, time.Since(start))

		if err != nil {
			telemetry.RecordError(span, err)
			if authenticated {
				return app.handleUnauthorized(err)
			}
			return err
		}
		telemetry.RecordSuccess(span)
		return nil
	}
}
