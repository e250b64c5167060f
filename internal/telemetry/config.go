package telemetry

import (
	"strings"

	"github.com/vendaa/vendaa/internal/config"
)

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the backend environment the client talks to (local, staging, production)
	Environment string

	// BackendURL is the resolved API base URL, recorded on every span's resource
	BackendURL string

	// Endpoint is the OTLP/HTTP collector, either host:port or a full URL.
	// Empty disables tracing and installs a noop provider.
	Endpoint string
}

// Enabled reports whether spans are exported.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

// endpointIsURL reports whether Endpoint carries a scheme.
func (c Config) endpointIsURL() bool {
	return strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://")
}

// DefaultConfig returns a disabled configuration; CLI invocations are short
// and tracing is opt-in.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "vendaa",
		ServiceVersion: "dev",
		Environment:    config.EnvStaging,
	}
}

// FromConfig derives the tracer configuration from the client configuration.
func FromConfig(cfg *config.Config, version string) Config {
	tc := DefaultConfig()
	if version != "" {
		tc.ServiceVersion = version
	}
	if cfg == nil {
		return tc
	}
	tc.Environment = cfg.Environment
	tc.Endpoint = cfg.TelemetryEndpoint
	if base, err := cfg.BaseURL(); err == nil {
		tc.BackendURL = base
	}
	return tc
}
