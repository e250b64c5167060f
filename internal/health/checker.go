// Package health runs the diagnostics behind 'vendaa doctor'.
//
// Each Checker inspects one dependency of the client: the resolved
// configuration, the state file, the backend and the stored session. A
// Manager runs them concurrently with a per-check timeout and returns the
// reports in registration order.
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "state-file".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	// StatusHealthy means the dependency works.
	StatusHealthy Status = "healthy"

	// StatusDegraded means commands still run but some will fail, e.g. no
	// session is stored.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means commands depending on it cannot work.
	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one check.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	// Suggestion tells the user how to fix a failing check.
	Suggestion string        `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithSuggestion sets the fix hint and returns the result for chaining.
func (r *Result) WithSuggestion(s string) *Result {
	r.Suggestion = s
	return r
}

// WithLatency sets the latency and returns the result for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
