// Package organization coordinates the current user, their organizations,
// the selected organization and its wallet balance.
//
// State moves Uninitialized -> Loading -> Ready | Failed. Balance fetches run
// in the background; each one is tagged with the organization id and a
// generation number and its result is dropped if a newer fetch or a reset
// happened in the meantime.
package organization

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/log"
	"github.com/vendaa/vendaa/internal/metrics"
	"github.com/vendaa/vendaa/internal/notify"
	"github.com/vendaa/vendaa/internal/storage"
	"github.com/vendaa/vendaa/internal/telemetry"
)

// State is the coordinator lifecycle state.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the subset of the API client the coordinator needs.
type Backend interface {
	Me(ctx context.Context) (*api.User, error)
	WalletBalance(ctx context.Context, orgID string) (string, error)
	CreateWallet(ctx context.Context, orgID string) error
}

// Logouter ends the session. Implemented by *session.Store.
type Logouter interface {
	Logout() error
}

// Coordinator owns organization and wallet state for one session.
type Coordinator struct {
	backend Backend
	session Logouter
	store   storage.Store
	logger  *log.Logger
	metrics *metrics.Metrics
	broker  *notify.Broker

	mu             sync.Mutex
	state          State
	user           *api.User
	orgs           []api.Organization
	selected       *api.Organization
	balance        *string
	balanceLoading bool
	err            error
	generation     uint64

	inflight sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics records coordinator outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New creates a coordinator. store persists the selected organization id.
func New(backend Backend, session Logouter, store storage.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		backend: backend,
		session: session,
		store:   store,
		logger:  log.DefaultLogger(),
		broker:  notify.NewBroker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "organization")
	return c
}

// Subscribe returns a channel signalled after every state change. Read the
// new state with Snapshot.
func (c *Coordinator) Subscribe() (<-chan struct{}, func()) {
	return c.broker.Subscribe()
}

// Init fetches the current user and resolves the selected organization. It
// may be called again to reload (after creating or joining an organization).
//
// A 401 logs the session out and leaves the coordinator Failed. Any other
// failure leaves it Ready with no organizations; the error is returned and
// kept in the snapshot.
func (c *Coordinator) Init(ctx context.Context) error {
	ctx, span := telemetry.StartCoordinatorSpan(ctx, "init")
	defer span.End()

	c.mu.Lock()
	c.state = Loading
	c.err = nil
	c.generation++
	c.balanceLoading = false
	c.mu.Unlock()
	c.broker.Publish()

	user, err := c.backend.Me(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return c.initFailed(err)
	}

	c.mu.Lock()
	c.user = user
	c.orgs = append([]api.Organization(nil), user.Organizations...)
	c.selected = nil
	c.balance = nil
	c.state = Ready

	if len(c.orgs) == 0 {
		c.mu.Unlock()
		c.logger.Info("user has no organizations", "email", user.Email)
		c.broker.Publish()
		telemetry.RecordSuccess(span, attribute.Int("organizations", 0))
		return nil
	}

	selected := c.resolveSelection()
	c.selected = &selected
	c.persistSelection(selected.UUID)
	c.startBalanceFetch(ctx, selected.UUID)
	c.mu.Unlock()

	c.logger.Info("organizations loaded",
		"count", len(user.Organizations),
		"selected", selected.UUID,
	)
	c.broker.Publish()
	telemetry.RecordSuccess(span,
		attribute.Int("organizations", len(user.Organizations)),
		attribute.String("org_id", selected.UUID),
	)
	return nil
}

func (c *Coordinator) initFailed(err error) error {
	if api.IsUnauthorized(err) {
		c.logger.WithError(err).Warn("session rejected, logging out")
		c.metrics.RecordLogout("unauthorized")
		// Logout hooks call Reset, so set Failed afterwards.
		if lerr := c.session.Logout(); lerr != nil {
			c.logger.WithError(lerr).Error("logout after 401 failed")
		}
		expired := errors.NewSessionExpiredError(err)

		c.mu.Lock()
		c.clearLocked()
		c.state = Failed
		c.err = expired
		c.mu.Unlock()
		c.broker.Publish()
		return expired
	}

	c.logger.WithError(err).Error("failed to fetch organizations")
	c.mu.Lock()
	c.clearLocked()
	c.state = Ready
	c.err = err
	c.mu.Unlock()
	c.broker.Publish()
	return err
}

// resolveSelection honors the remembered id if it is still a member of the
// current set, else picks the first organization. Caller holds c.mu and
// guarantees len(c.orgs) > 0.
func (c *Coordinator) resolveSelection() api.Organization {
	remembered, ok, err := c.store.Get(storage.KeySelectedOrganizationID)
	if err != nil {
		c.logger.WithError(err).Warn("failed to read selected organization")
	}
	if ok && remembered != "" {
		for _, org := range c.orgs {
			if org.UUID == remembered {
				return org
			}
		}
		c.logger.Debug("remembered organization no longer available", "org_id", remembered)
	}
	return c.orgs[0]
}

// persistSelection is called with c.mu held so writes land in switch order.
func (c *Coordinator) persistSelection(orgID string) {
	if err := c.store.Set(storage.KeySelectedOrganizationID, orgID); err != nil {
		c.logger.WithError(err).Warn("failed to persist selected organization", "org_id", orgID)
	}
}

// Switch selects the organization with the given id and refetches its
// balance. Unknown ids are ignored; the return value reports whether the
// switch happened.
func (c *Coordinator) Switch(ctx context.Context, orgID string) bool {
	c.mu.Lock()
	var target *api.Organization
	for i := range c.orgs {
		if c.orgs[i].UUID == orgID {
			org := c.orgs[i]
			target = &org
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		c.logger.Debug("ignoring switch to unknown organization", "org_id", orgID)
		return false
	}

	c.selected = target
	c.balance = nil
	c.persistSelection(orgID)
	c.startBalanceFetch(ctx, orgID)
	c.mu.Unlock()

	c.metrics.RecordSwitch()
	c.logger.Info("switched organization", "org_id", orgID, "name", target.Name)
	c.broker.Publish()
	return true
}

// RefetchBalance starts a new balance fetch for the selected organization.
// It returns false when nothing is selected.
func (c *Coordinator) RefetchBalance(ctx context.Context) bool {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return false
	}
	c.startBalanceFetch(ctx, c.selected.UUID)
	c.mu.Unlock()

	c.broker.Publish()
	return true
}

// Reset drops all state and returns to Uninitialized. In-flight balance
// fetches are discarded when they complete. Used as a logout hook.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.clearLocked()
	c.state = Uninitialized
	c.err = nil
	c.generation++
	c.mu.Unlock()
	c.broker.Publish()
}

// Wait blocks until every started balance fetch has finished.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

func (c *Coordinator) clearLocked() {
	c.user = nil
	c.orgs = nil
	c.selected = nil
	c.balance = nil
	c.balanceLoading = false
}

// startBalanceFetch must be called with c.mu held.
func (c *Coordinator) startBalanceFetch(ctx context.Context, orgID string) {
	c.generation++
	gen := c.generation
	c.balanceLoading = true

	c.inflight.Add(1)
	go c.fetchBalance(ctx, orgID, gen)
}

func (c *Coordinator) fetchBalance(ctx context.Context, orgID string, gen uint64) {
	defer c.inflight.Done()

	ctx, span := telemetry.StartCoordinatorSpan(ctx, "balance", attribute.String("org_id", orgID))
	defer span.End()

	balance, outcome := c.resolveBalance(ctx, orgID)

	c.mu.Lock()
	if gen != c.generation || c.selected == nil || c.selected.UUID != orgID {
		c.mu.Unlock()
		c.logger.Debug("discarding stale balance", "org_id", orgID)
		c.metrics.RecordBalanceFetch(metrics.BalanceStale)
		span.SetAttributes(attribute.Bool("stale", true))
		return
	}
	c.balance = balance
	c.balanceLoading = false
	c.mu.Unlock()

	c.metrics.RecordBalanceFetch(outcome)
	telemetry.RecordSuccess(span, attribute.String("outcome", outcome))
	c.broker.Publish()
}

// resolveBalance fetches the balance, provisioning a missing wallet once.
// A nil result means the balance is unknown.
func (c *Coordinator) resolveBalance(ctx context.Context, orgID string) (*string, string) {
	balance, err := c.backend.WalletBalance(ctx, orgID)
	if err == nil {
		return &balance, metrics.BalanceOK
	}

	if !api.IsNotFound(err) {
		c.logger.WithError(err).Warn("failed to fetch wallet balance", "org_id", orgID)
		return nil, metrics.BalanceAbsent
	}

	c.logger.Info("wallet not found, creating", "org_id", orgID)
	if cerr := c.backend.CreateWallet(ctx, orgID); cerr != nil {
		c.logger.WithError(cerr).Warn("failed to create wallet", "org_id", orgID)
		c.metrics.RecordWalletProvision(false)
	} else {
		c.metrics.RecordWalletProvision(true)
	}

	balance, err = c.backend.WalletBalance(ctx, orgID)
	if err != nil {
		c.logger.WithError(err).Warn("wallet balance still unavailable after create", "org_id", orgID)
		return nil, metrics.BalanceAbsent
	}
	return &balance, metrics.BalanceProvisioned
}
