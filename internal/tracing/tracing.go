package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"transcriptor/internal/config"
	"transcriptor/internal/logging"
)

const setupTimeout = 5 * time.Second

// Shutdown flushes buffered spans and releases the exporter.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Init configures span export from cfg and returns its shutdown hook. The
// hook is always non-nil.
func Init(ctx context.Context, cfg config.Tracing, logger *slog.Logger) (Shutdown, error) {
	endpoint := strings.TrimSpace(cfg.OTLPEndpoint)
	if endpoint == "" {
		return noop, nil
	}
	ctx, stop := context.WithTimeout(ctx, setupTimeout)
	defer stop()

	opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracegrpc.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(cfg.ServiceName))),
	)
	otel.SetTracerProvider(tp)
	logging.NewComponentLogger(logger, "tracing").Debug("span export enabled",
		logging.String("endpoint", endpoint),
		logging.String("service_name", cfg.ServiceName),
	)
	return tp.Shutdown, nil
}
