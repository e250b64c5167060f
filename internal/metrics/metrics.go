package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Balance fetch outcomes.
const (
	BalanceOK          = "ok"
	BalanceProvisioned = "provisioned"
	BalanceAbsent      = "absent"
	BalanceStale       = "stale"
)

// Metrics holds all Prometheus metrics for the vendaa client.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Backend request metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec
	APIFailures *prometheus.CounterVec

	// Coordinator metrics
	BalanceFetches       *prometheus.CounterVec
	WalletProvisions     *prometheus.CounterVec
	OrganizationSwitches prometheus.Counter
	Logouts              *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendaa_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vendaa_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendaa_api_requests_total",
				Help: "Backend requests by templated route and HTTP status",
			},
			[]string{"method", "route", "status"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vendaa_api_request_duration_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		APIFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendaa_api_transport_failures_total",
				Help: "Requests that never produced an HTTP status (network, rate limit, decode)",
			},
			[]string{"route", "kind"},
		),

		BalanceFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendaa_wallet_balance_fetches_total",
				Help: "Wallet balance resolutions by outcome",
			},
			[]string{"outcome"},
		),
		WalletProvisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendaa_wallet_provisions_total",
				Help: "Lazy wallet creations after a missing wallet",
			},
			[]string{"success"},
		),
		OrganizationSwitches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vendaa_organization_switches_total",
				Help: "Accepted organization switches",
			},
		),
		Logouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendaa_logouts_total",
				Help: "Session terminations by reason",
			},
			[]string{"reason"},
		),
	}
}

// RecordCommand records one command execution.
func (m *Metrics) RecordCommand(command string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// ObserveRequest records a completed backend request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.APILatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveFailure records a request that failed before a status was received.
func (m *Metrics) ObserveFailure(route, kind string) {
	if m == nil {
		return
	}
	m.APIFailures.WithLabelValues(route, kind).Inc()
}

// RecordBalanceFetch records how a balance resolution ended.
func (m *Metrics) RecordBalanceFetch(outcome string) {
	if m == nil {
		return
	}
	m.BalanceFetches.WithLabelValues(outcome).Inc()
}

// RecordWalletProvision records a lazy wallet creation attempt.
func (m *Metrics) RecordWalletProvision(success bool) {
	if m == nil {
		return
	}
	m.WalletProvisions.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordSwitch records an accepted organization switch.
func (m *Metrics) RecordSwitch() {
	if m == nil {
		return
	}
	m.OrganizationSwitches.Inc()
}

// RecordLogout records a logout with its reason (explicit, unauthorized, external).
func (m *Metrics) RecordLogout(reason string) {
	if m == nil {
		return
	}
	m.Logouts.WithLabelValues(reason).Inc()
}
