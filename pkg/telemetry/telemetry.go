package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ScopeName is the instrumentation scope used when callers pass an empty name.
const ScopeName = "settings-hub"

// Attribute is a key/value pair attached to spans and metric points.
type Attribute = attribute.KeyValue

// String returns a string-valued Attribute.
func String(key, value string) Attribute {
	return attribute.String(key, value)
}

// Bool returns a bool-valued Attribute.
func Bool(key string, value bool) Attribute {
	return attribute.Bool(key, value)
}

// ShutdownFunc flushes and closes one telemetry pipeline.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init wires traces, metrics and logs to the OTLP collector at
// OTEL_EXPORTER_OTLP_ENDPOINT. When the endpoint is unset telemetry stays
// disabled and no-op shutdown functions are returned.
func Init(ctx context.Context, serviceName string) (shutdownTracer, shutdownMeter, shutdownLogger ShutdownFunc, err error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		slog.Warn("OTEL_EXPORTER_OTLP_ENDPOINT not set, telemetry disabled")
		return noopShutdown, noopShutdown, noopShutdown, nil
	}

	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
	}
	if serviceName == "" {
		serviceName = "unknown-service"
	}

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	shutdownTracer, err = initTraces(ctx, conn, res)
	if err != nil {
		return nil, nil, nil, err
	}
	shutdownMeter, err = initMetrics(ctx, conn, res)
	if err != nil {
		return shutdownTracer, nil, nil, err
	}
	shutdownLogger, err = initLogs(ctx, conn, res)
	if err != nil {
		return shutdownTracer, shutdownMeter, nil, err
	}

	slog.Info("otel_enabled", "endpoint", endpoint, "service", serviceName)

	return shutdownTracer, shutdownMeter, shutdownLogger, nil
}
