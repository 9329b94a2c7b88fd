// Package observability groups the structured logging, Prometheus metrics and
// OpenTelemetry tracing used across newsdesk.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: business counters shared by the HTTP layer
//   - tracing: tracer provider set-up and HTTP span middleware
package observability
