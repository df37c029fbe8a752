// Package tracing installs an OpenTelemetry tracer provider that exports
// spans over OTLP/gRPC when an endpoint is configured. Without an endpoint
// the global no-op provider stays in place and spans cost nothing.
package tracing
