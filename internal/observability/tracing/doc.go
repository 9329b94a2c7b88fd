// Package tracing sets up the OpenTelemetry tracer provider and wraps HTTP
// handlers in server spans.
//
// Example usage:
//
//	shutdown := tracing.Init("newsdesk")
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.GetTracer().Start(ctx, "feed.NotifyAll")
//	defer span.End()
package tracing
