package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/vendaa/vendaa/internal/config"
)

// setupTestTracer creates a test tracer with in-memory exporter
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	cfg := DefaultConfig()
	cfg.BackendURL = "http://localhost:8000"
	res, err := createResource(cfg)
	if err != nil {
		t.Fatalf("createResource failed: %v", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	previous := GetTracerProvider()
	install(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		install(previous)
	})

	return exporter
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartAPISpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartAPISpan(context.Background(), "GET", "/wallet/balance/{id}/")
	RecordSuccess(span, attribute.Int("http.status_code", 200))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	got := spans[0]
	if got.Name != "GET /wallet/balance/{id}/" {
		t.Errorf("span name = %q", got.Name)
	}
	if got.SpanKind != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", got.SpanKind)
	}
	if got.Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status.Code)
	}
	if v, ok := attr(got.Attributes, "http.route"); !ok || v.AsString() != "/wallet/balance/{id}/" {
		t.Errorf("http.route attribute missing or wrong: %v", v)
	}
}

func TestRecordError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "org.switch")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status.Code)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected 1 error event, got %d", len(spans[0].Events))
	}
}

func TestStartCoordinatorSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCoordinatorSpan(context.Background(), "switch", attribute.String("org_id", "org-1"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "organization.switch" {
		t.Fatalf("unexpected spans: %+v", spans)
	}
	if v, ok := attr(spans[0].Attributes, "org_id"); !ok || v.AsString() != "org-1" {
		t.Errorf("org_id attribute missing")
	}
}

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	if GetTracerProvider() == nil {
		t.Error("expected a tracer provider")
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		version     string
		wantEnabled bool
		want        Config
	}{
		{
			name:    "nil config keeps defaults",
			cfg:     nil,
			version: "",
			want:    DefaultConfig(),
		},
		{
			name:    "environment resolves the backend",
			cfg:     &config.Config{Environment: "local"},
			version: "1.2.0",
			want: Config{
				ServiceName:    "vendaa",
				ServiceVersion: "1.2.0",
				Environment:    "local",
				BackendURL:     config.LocalURL,
			},
		},
		{
			name:        "endpoint enables export",
			cfg:         &config.Config{Environment: "production", APIURL: "https://api.test/", TelemetryEndpoint: "otel:4318"},
			version:     "1.0.0",
			wantEnabled: true,
			want: Config{
				ServiceName:    "vendaa",
				ServiceVersion: "1.0.0",
				Environment:    "production",
				BackendURL:     "https://api.test",
				Endpoint:       "otel:4318",
			},
		},
		{
			name:    "unknown environment leaves the backend empty",
			cfg:     &config.Config{Environment: "moon"},
			version: "1.0.0",
			want: Config{
				ServiceName:    "vendaa",
				ServiceVersion: "1.0.0",
				Environment:    "moon",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromConfig(tt.cfg, tt.version)
			if got != tt.want {
				t.Errorf("FromConfig() = %+v, want %+v", got, tt.want)
			}
			if got.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", got.Enabled(), tt.wantEnabled)
			}
		})
	}
}

func TestEndpointIsURL(t *testing.T) {
	if (Config{Endpoint: "otel:4318"}).endpointIsURL() {
		t.Error("host:port is not a URL")
	}
	if !(Config{Endpoint: "https://otel.example.com/v1/traces"}).endpointIsURL() {
		t.Error("expected a URL endpoint")
	}
}

func TestResourceDescribesClient(t *testing.T) {
	cfg := FromConfig(&config.Config{Environment: "local"}, "1.2.0")
	res, err := createResource(cfg)
	if err != nil {
		t.Fatalf("createResource failed: %v", err)
	}

	want := map[string]string{
		"service.name":           "vendaa",
		"service.version":        "1.2.0",
		"deployment.environment": "local",
		"vendaa.backend.url":     config.LocalURL,
		"service.instance.id":    instanceID,
	}
	for key, value := range want {
		v, ok := attr(res.Attributes(), key)
		if !ok || v.AsString() != value {
			t.Errorf("resource %s = %q, want %q", key, v.AsString(), value)
		}
	}
}

func TestInitProviderWithEndpoint(t *testing.T) {
	previous := GetTracerProvider()
	t.Cleanup(func() { install(previous) })

	cfg := FromConfig(&config.Config{Environment: "local", TelemetryEndpoint: "http://127.0.0.1:1"}, "test")
	shutdown, err := InitProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	if _, ok := GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected an SDK provider, got %T", GetTracerProvider())
	}

	// Nothing was recorded, so shutdown does not reach the collector.
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	if _, ok := GetTracerProvider().(*sdktrace.TracerProvider); ok {
		t.Error("expected the provider to be uninstalled after shutdown")
	}
}
