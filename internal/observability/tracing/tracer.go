package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span newsdesk creates.
const TracerName = "newsdesk"

// Init installs an SDK tracer provider and the W3C trace-context propagator.
// No exporter is attached; spans still carry trace IDs that the logging
// middleware and the X-Trace-Id header expose for correlation.
func Init(opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}

// GetTracer returns the newsdesk tracer from the current global provider.
func GetTracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}
