package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// installed is the provider spans are started from. A CLI process installs
// one per command; the dashboard keeps it for its lifetime.
var installed struct {
	sync.RWMutex
	provider trace.TracerProvider
}

// instanceID distinguishes the spans of concurrent vendaa processes that
// share a state file.
var instanceID = uuid.NewString()

// backendURLKey records which backend the client was pointed at.
const backendURLKey = attribute.Key("vendaa.backend.url")

func createResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		semconv.ServiceInstanceIDKey.String(instanceID),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	}
	if cfg.BackendURL != "" {
		attrs = append(attrs, backendURLKey.String(cfg.BackendURL))
	}
	return resource.New(context.Background(),
		resource.WithAttributes(attrs...),
		resource.WithTelemetrySDK(),
	)
}

func newExporter(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithCompression(otlptracehttp.GzipCompression)}
	if cfg.endpointIsURL() {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	return otlptracehttp.New(ctx, opts...)
}

// InitProvider installs the tracer provider for cfg and returns the function
// that flushes and stops it. Without an endpoint a noop provider is installed.
func InitProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled() {
		install(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(2*time.Second)),
	)
	install(tp)

	return func(shutdownCtx context.Context) error {
		install(noop.NewTracerProvider())
		return tp.Shutdown(shutdownCtx)
	}, nil
}

func install(tp trace.TracerProvider) {
	installed.Lock()
	installed.provider = tp
	installed.Unlock()
	otel.SetTracerProvider(tp)
}

// GetTracerProvider returns the installed tracer provider, or a noop one.
func GetTracerProvider() trace.TracerProvider {
	installed.RLock()
	defer installed.RUnlock()

	if installed.provider != nil {
		return installed.provider
	}
	return noop.NewTracerProvider()
}
