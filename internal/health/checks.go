package health

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/config"
	"github.com/vendaa/vendaa/internal/storage"
)

const loginHint = "Run 'vendaa auth login' to start a session"

type checkFunc struct {
	name string
	fn   func(ctx context.Context) *Result
}

func (c checkFunc) Name() string                      { return c.name }
func (c checkFunc) Check(ctx context.Context) *Result { return c.fn(ctx) }

// NewConfigChecker validates the resolved configuration.
func NewConfigChecker(cfg *config.Config, file string) Checker {
	return checkFunc{name: "config", fn: func(ctx context.Context) *Result {
		if err := cfg.Validate(); err != nil {
			return Unhealthy(err.Error()).
				WithDetail("file", file).
				WithSuggestion("Run 'vendaa config edit' to fix the configuration")
		}
		baseURL, _ := cfg.BaseURL()
		return Healthy("environment " + cfg.Environment).
			WithDetail("file", file).
			WithDetail("base_url", baseURL)
	}}
}

// NewStateChecker verifies the state file can be read.
func NewStateChecker(store storage.Store, path string) Checker {
	return checkFunc{name: "state-file", fn: func(ctx context.Context) *Result {
		if _, _, err := store.Get(storage.KeyAccessToken); err != nil {
			return Unhealthy("state file unreadable: "+err.Error()).
				WithDetail("path", path).
				WithSuggestion(fmt.Sprintf("Remove %s and log in again", path))
		}
		return Healthy("readable").WithDetail("path", path)
	}}
}

// Pinger reaches the backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewBackendChecker verifies the backend answers HTTP. Any status below 500
// counts as reachable.
func NewBackendChecker(p Pinger, baseURL string) Checker {
	return checkFunc{name: "backend", fn: func(ctx context.Context) *Result {
		err := p.Ping(ctx)
		if err == nil {
			return Healthy("reachable").WithDetail("url", baseURL)
		}
		var apiErr *api.Error
		if stderrors.As(err, &apiErr) {
			if apiErr.Status >= http.StatusInternalServerError {
				return Degraded(fmt.Sprintf("answered with HTTP %d", apiErr.Status)).
					WithDetail("url", baseURL).
					WithSuggestion("The backend may be restarting; retry in a minute")
			}
			return Healthy("reachable").
				WithDetail("url", baseURL).
				WithDetail("status", apiErr.Status)
		}
		return Unhealthy("unreachable: "+err.Error()).
			WithDetail("url", baseURL).
			WithSuggestion("Check your network connection, --env and --api-url")
	}}
}

// Session reports whether a token is stored.
type Session interface {
	IsAuthenticated() bool
}

// Identity resolves the user behind the stored token.
type Identity interface {
	Me(ctx context.Context) (*api.User, error)
}

// NewSessionChecker verifies the stored token is accepted. It never logs the
// session out.
func NewSessionChecker(s Session, id Identity) Checker {
	return checkFunc{name: "session", fn: func(ctx context.Context) *Result {
		if !s.IsAuthenticated() {
			return Degraded("not logged in").WithSuggestion(loginHint)
		}
		user, err := id.Me(ctx)
		switch {
		case api.IsUnauthorized(err):
			return Unhealthy("token rejected by the server").WithSuggestion(loginHint)
		case err != nil:
			return Degraded("could not verify the session: " + api.Message(err))
		}
		return Healthy("logged in as "+user.Email).
			WithDetail("organizations", len(user.Organizations))
	}}
}
