package tracer

import (
	"context"
	"os"

	"math-agent-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "math-agent-backend"

// InitTracer installs an OTLP HTTP exporter as the global tracer provider.
// When disabled the global no-op provider stays in place.
// The returned function flushes and shuts the provider down.
func InitTracer(enabled bool, log logger.ILogger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !enabled {
		log.Info("TRACER", "OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)", nil)
		return noop
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("TRACER", "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Info("TRACER", "OpenTelemetry tracer initialized", map[string]interface{}{
		"endpoint": endpoint,
	})

	return tp.Shutdown
}
