// Package session owns the operator's bearer credentials.
//
// Tokens live only in the storage backend. Every accessor reads through to
// storage, so a logout performed by another process is visible on the next
// call without any cache invalidation.
package session

import (
	"context"
	"sync"

	"github.com/vendaa/vendaa/internal/log"
	"github.com/vendaa/vendaa/internal/notify"
	"github.com/vendaa/vendaa/internal/storage"
)

// LogoutHook runs after tokens have been cleared. Hooks reset in-memory state
// that must not outlive a session (organizations, wallet) and send the user
// back to the login entry point.
type LogoutHook func()

// Store exposes authentication state derived from stored tokens.
type Store struct {
	backend storage.Store
	logger  *log.Logger

	mu            sync.Mutex
	hooks         []LogoutHook
	externalHooks []LogoutHook
	authenticated bool
	broker        *notify.Broker
}

// New creates a session store over backend.
func New(backend storage.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	s := &Store{
		backend: backend,
		logger:  logger.With("component", "session"),
		broker:  notify.NewBroker(),
	}
	s.authenticated = s.IsAuthenticated()
	return s
}

func (s *Store) read(key string) string {
	v, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read token", "key", key)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// AccessToken returns the stored access token or "" when absent.
func (s *Store) AccessToken() string {
	return s.read(storage.KeyAccessToken)
}

// RefreshToken returns the stored refresh token or "" when absent.
func (s *Store) RefreshToken() string {
	return s.read(storage.KeyRefreshToken)
}

// IsAuthenticated reports whether an access token is present.
func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// SetTokens persists a freshly issued token pair.
func (s *Store) SetTokens(access, refresh string) error {
	if err := s.backend.Set(storage.KeyAccessToken, access); err != nil {
		return err
	}
	// A pair without a refresh token drops the previous session's one.
	var err error
	if refresh != "" {
		err = s.backend.Set(storage.KeyRefreshToken, refresh)
	} else {
		err = s.backend.Delete(storage.KeyRefreshToken)
	}
	if err != nil {
		return err
	}
	s.refresh()
	return nil
}

// OnLogout registers a hook that runs after every logout.
func (s *Store) OnLogout(hook LogoutHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// OnExternalLogout registers a hook that runs, after the logout hooks, when
// Watch sees the tokens removed by another process.
func (s *Store) OnExternalLogout(hook LogoutHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalHooks = append(s.externalHooks, hook)
}

// Logout clears both tokens and runs the logout hooks. Hooks run even if the
// backend fails to delete, so in-memory state never survives a logout.
func (s *Store) Logout() error {
	// Flip the flag first so a concurrent Watch does not see a transition
	// and run the hooks a second time.
	s.mu.Lock()
	s.authenticated = false
	s.mu.Unlock()

	err := s.backend.Delete(storage.KeyAccessToken, storage.KeyRefreshToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to clear tokens")
	}

	s.logger.Info("logged out")
	s.broker.Publish()
	s.runHooks()
	return err
}

// Subscribe returns a channel signalled when the authenticated state changes.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	return s.broker.Subscribe()
}

// refresh re-derives the authenticated flag and publishes on change.
func (s *Store) refresh() bool {
	now := s.IsAuthenticated()

	s.mu.Lock()
	changed := now != s.authenticated
	s.authenticated = now
	s.mu.Unlock()

	if changed {
		s.logger.Debug("authentication state changed", "authenticated", now)
		s.broker.Publish()
	}
	return changed
}

// Watch re-derives authentication state on every storage change until ctx is
// done. A token removed by another process runs the logout hooks here too.
func (s *Store) Watch(ctx context.Context) error {
	changes, cancel := s.backend.Subscribe()
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.backend.Watch(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				return err
			}
			// Backend has no external medium; keep serving local changes.
			errCh = nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if s.refresh() && !s.IsAuthenticated() {
				s.logger.Info("session ended by another process")
				s.runHooks()
				s.runExternalHooks()
			}
		}
	}
}

func (s *Store) runHooks() {
	s.mu.Lock()
	hooks := append([]LogoutHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

func (s *Store) runExternalHooks() {
	s.mu.Lock()
	hooks := append([]LogoutHook(nil), s.externalHooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}
