package organization

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/log"
	"github.com/vendaa/vendaa/internal/metrics"
	"github.com/vendaa/vendaa/internal/session"
	"github.com/vendaa/vendaa/internal/storage"
)

// fakeBackend serves canned responses and counts calls.
type fakeBackend struct {
	mu sync.Mutex

	user   *api.User
	meErr  error
	wallet map[string][]balanceResult // queued results per org
	create map[string]error

	// gate, when set for an org, blocks its balance call until closed.
	gate map[string]chan struct{}

	meCalls      int
	balanceCalls map[string]int
	createCalls  map[string]int
}

type balanceResult struct {
	balance string
	err     error
}

func newFakeBackend(orgs ...api.Organization) *fakeBackend {
	return &fakeBackend{
		user:         &api.User{Email: "ada@example.com", FirstName: "Ada", Organizations: orgs},
		wallet:       map[string][]balanceResult{},
		create:       map[string]error{},
		gate:         map[string]chan struct{}{},
		balanceCalls: map[string]int{},
		createCalls:  map[string]int{},
	}
}

func (f *fakeBackend) Me(ctx context.Context) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.user
	return &u, nil
}

func (f *fakeBackend) WalletBalance(ctx context.Context, orgID string) (string, error) {
	f.mu.Lock()
	f.balanceCalls[orgID]++
	gate := f.gate[orgID]
	var res balanceResult
	if q := f.wallet[orgID]; len(q) > 0 {
		res = q[0]
		if len(q) > 1 {
			f.wallet[orgID] = q[1:]
		}
	} else {
		res = balanceResult{err: &api.Error{Status: 500, Message: "no canned result"}}
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res.balance, res.err
}

func (f *fakeBackend) CreateWallet(ctx context.Context, orgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls[orgID]++
	return f.create[orgID]
}

func (f *fakeBackend) calls(orgID string) (balance, create int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balanceCalls[orgID], f.createCalls[orgID]
}

func ok(balance string) balanceResult { return balanceResult{balance: balance} }

func fail(status int) balanceResult {
	return balanceResult{err: &api.Error{Status: status, Message: fmt.Sprintf("HTTP %d", status)}}
}

var (
	orgX = api.Organization{UUID: "X", Name: "Xylo"}
	orgY = api.Organization{UUID: "Y", Name: "Yarrow"}
)

type harness struct {
	backend *fakeBackend
	store   *storage.MemoryStore
	session *session.Store
	metrics *metrics.Metrics
	coord   *Coordinator
}

func newHarness(t *testing.T, backend *fakeBackend) *harness {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAccessToken, "tok"))

	sess := session.New(store, log.Discard())
	_, m := metrics.NewRegistry()
	coord := New(backend, sess, store, WithLogger(log.Discard()), WithMetrics(m))
	sess.OnLogout(coord.Reset)

	return &harness{backend: backend, store: store, session: sess, metrics: m, coord: coord}
}

func (h *harness) selectedInStore(t *testing.T) string {
	t.Helper()
	v, _, err := h.store.Get(storage.KeySelectedOrganizationID)
	require.NoError(t, err)
	return v
}

func TestInitSelection(t *testing.T) {
	tests := []struct {
		name       string
		remembered string
		want       string
	}{
		{"nothing remembered picks first", "", "X"},
		{"remembered id honored", "Y", "Y"},
		{"stale remembered id falls back to first", "Z", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(orgX, orgY)
			backend.wallet["X"] = []balanceResult{ok("1")}
			backend.wallet["Y"] = []balanceResult{ok("2")}
			h := newHarness(t, backend)
			if tt.remembered != "" {
				require.NoError(t, h.store.Set(storage.KeySelectedOrganizationID, tt.remembered))
			}

			require.NoError(t, h.coord.Init(context.Background()))
			h.coord.Wait()

			snap := h.coord.Snapshot()
			assert.Equal(t, Ready, snap.State)
			assert.Equal(t, tt.want, snap.SelectedID())
			assert.Equal(t, tt.want, h.selectedInStore(t), "resolved id must be persisted")
			assert.Len(t, snap.Organizations, 2)
			assert.Equal(t, "ada@example.com", snap.User.Email)

			// Only the resolved organization's wallet is fetched, once.
			other := "Y"
			if tt.want == "Y" {
				other = "X"
			}
			wantCalls, _ := backend.calls(tt.want)
			otherCalls, _ := backend.calls(other)
			assert.Equal(t, 1, wantCalls)
			assert.Zero(t, otherCalls)

			require.NotNil(t, snap.Balance)
			assert.Equal(t, map[string]string{"X": "1", "Y": "2"}[tt.want], *snap.Balance)
		})
	}
}

func TestInitFetchesBalance(t *testing.T) {
	backend := newFakeBackend(orgX)
	backend.wallet["X"] = []balanceResult{ok("0")}
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()

	snap := h.coord.Snapshot()
	require.NotNil(t, snap.Balance)
	assert.Equal(t, "0", *snap.Balance, "zero is a known balance, not absent")
	assert.False(t, snap.BalanceLoading)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.BalanceFetches.WithLabelValues(metrics.BalanceOK)))
}

func TestInitEmptyOrganizations(t *testing.T) {
	backend := newFakeBackend()
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()

	snap := h.coord.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.False(t, snap.HasOrganizations())
	assert.Nil(t, snap.Selected)
	assert.Nil(t, snap.Balance)
	assert.False(t, snap.BalanceLoading)
	assert.Empty(t, backend.balanceCalls, "no wallet fetch without organizations")
	assert.False(t, h.coord.RefetchBalance(context.Background()))
}

func TestInitUnauthorizedLogsOut(t *testing.T) {
	backend := newFakeBackend(orgX)
	backend.meErr = &api.Error{Status: 401, Message: "Given token not valid"}
	h := newHarness(t, backend)

	loggedOut := 0
	h.session.OnLogout(func() { loggedOut++ })

	err := h.coord.Init(context.Background())
	require.Error(t, err)

	var vErr *errors.VendaaError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, errors.ErrCodeAuthFailed, vErr.Code)

	snap := h.coord.Snapshot()
	assert.Equal(t, Failed, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Organizations)
	assert.Equal(t, 1, loggedOut)
	assert.False(t, h.session.IsAuthenticated())
	assert.Empty(t, h.session.AccessToken())
}

func TestInitOtherFailureIsDegradedReady(t *testing.T) {
	backend := newFakeBackend(orgX)
	backend.meErr = &api.Error{Status: 500, Message: "boom"}
	h := newHarness(t, backend)

	err := h.coord.Init(context.Background())
	require.Error(t, err)

	snap := h.coord.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Empty(t, snap.Organizations)
	assert.Equal(t, err, snap.Err)
	assert.True(t, h.session.IsAuthenticated(), "non-auth failures keep the session")
}

func TestSwitch(t *testing.T) {
	backend := newFakeBackend(orgX, orgY)
	backend.wallet["X"] = []balanceResult{ok("100")}
	backend.wallet["Y"] = []balanceResult{ok("250.50")}
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()
	yCalls, _ := backend.calls("Y")
	require.Zero(t, yCalls)

	assert.True(t, h.coord.Switch(context.Background(), "Y"))
	h.coord.Wait()

	yCalls, _ = backend.calls("Y")
	xCalls, _ := backend.calls("X")
	assert.Equal(t, 1, yCalls, "switch issues exactly one fetch for the new organization")
	assert.Equal(t, 1, xCalls, "switch must not refetch the previous organization")

	snap := h.coord.Snapshot()
	assert.Equal(t, "Y", snap.SelectedID())
	require.NotNil(t, snap.Balance)
	assert.Equal(t, "250.50", *snap.Balance)
	assert.Equal(t, "Y", h.selectedInStore(t))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.OrganizationSwitches))
}

func TestSwitchUnknownIsNoop(t *testing.T) {
	backend := newFakeBackend(orgX, orgY)
	backend.wallet["X"] = []balanceResult{ok("100")}
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()
	before := h.coord.Snapshot()
	writes := h.store.Writes(storage.KeySelectedOrganizationID)

	assert.False(t, h.coord.Switch(context.Background(), "nope"))
	h.coord.Wait()

	after := h.coord.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, writes, h.store.Writes(storage.KeySelectedOrganizationID), "no-op switch must not persist")
	balanceCalls, _ := backend.calls("X")
	assert.Equal(t, 1, balanceCalls)
}

func TestBalanceNotFoundProvisionsOnce(t *testing.T) {
	tests := []struct {
		name       string
		results    []balanceResult
		createErr  error
		want       *string
		wantCreate int
		wantCalls  int
	}{
		{
			name:       "create then retry succeeds",
			results:    []balanceResult{fail(404), ok("0.00")},
			want:       strPtr("0.00"),
			wantCreate: 1,
			wantCalls:  2,
		},
		{
			name:       "retry fails again",
			results:    []balanceResult{fail(404), fail(404)},
			wantCreate: 1,
			wantCalls:  2,
		},
		{
			name:       "create fails, retry still attempted once",
			results:    []balanceResult{fail(404), fail(404)},
			createErr:  &api.Error{Status: 400, Message: "exists"},
			wantCreate: 1,
			wantCalls:  2,
		},
		{
			name:       "server error never creates",
			results:    []balanceResult{fail(500)},
			wantCreate: 0,
			wantCalls:  1,
		},
		{
			name:       "forbidden never creates",
			results:    []balanceResult{fail(403)},
			wantCreate: 0,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(orgX)
			backend.wallet["X"] = tt.results
			backend.create["X"] = tt.createErr
			h := newHarness(t, backend)

			require.NoError(t, h.coord.Init(context.Background()))
			h.coord.Wait()

			snap := h.coord.Snapshot()
			assert.Equal(t, tt.want, snap.Balance)
			assert.False(t, snap.BalanceLoading)
			assert.Equal(t, Ready, snap.State, "balance failures never fail the coordinator")

			calls, creates := backend.calls("X")
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantCreate, creates)
		})
	}
}

func TestStaleBalanceDiscarded(t *testing.T) {
	backend := newFakeBackend(orgX, orgY)
	backend.wallet["X"] = []balanceResult{ok("111")}
	backend.wallet["Y"] = []balanceResult{ok("222")}
	gateX := make(chan struct{})
	backend.gate["X"] = gateX
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	require.True(t, h.coord.Switch(context.Background(), "Y"))

	// Let Y finish first, then release the late X result.
	require.Eventually(t, func() bool {
		snap := h.coord.Snapshot()
		return snap.Balance != nil && *snap.Balance == "222"
	}, time.Second, 5*time.Millisecond)
	close(gateX)
	h.coord.Wait()

	snap := h.coord.Snapshot()
	require.NotNil(t, snap.Balance)
	assert.Equal(t, "222", *snap.Balance)
	assert.Equal(t, "Y", snap.SelectedID())
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.BalanceFetches.WithLabelValues(metrics.BalanceStale)))
}

func TestRefetchBalance(t *testing.T) {
	backend := newFakeBackend(orgX)
	backend.wallet["X"] = []balanceResult{ok("10"), ok("5010")}
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()
	require.True(t, h.coord.RefetchBalance(context.Background()))
	h.coord.Wait()

	snap := h.coord.Snapshot()
	require.NotNil(t, snap.Balance)
	assert.Equal(t, "5010", *snap.Balance)
}

func TestLogoutResetsCoordinator(t *testing.T) {
	backend := newFakeBackend(orgX)
	backend.wallet["X"] = []balanceResult{ok("10")}
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()
	require.NoError(t, h.session.Logout())

	snap := h.coord.Snapshot()
	assert.Equal(t, Uninitialized, snap.State)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Selected)
	assert.Nil(t, snap.Balance)
}

func TestSubscribeNotifiesOnChange(t *testing.T) {
	backend := newFakeBackend(orgX)
	backend.wallet["X"] = []balanceResult{ok("10")}
	h := newHarness(t, backend)

	ch, cancel := h.coord.Subscribe()
	defer cancel()

	require.NoError(t, h.coord.Init(context.Background()))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	backend := newFakeBackend(orgX, orgY)
	backend.wallet["X"] = []balanceResult{ok("10")}
	h := newHarness(t, backend)

	require.NoError(t, h.coord.Init(context.Background()))
	h.coord.Wait()

	snap := h.coord.Snapshot()
	snap.Organizations[0].Name = "mutated"
	*snap.Balance = "999"

	fresh := h.coord.Snapshot()
	assert.Equal(t, "Xylo", fresh.Organizations[0].Name)
	assert.Equal(t, "10", *fresh.Balance)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func strPtr(s string) *string { return &s }
