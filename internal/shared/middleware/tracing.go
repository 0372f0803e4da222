package middleware

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpTracer = otel.Tracer("centavo/http")
	httpMeter  = otel.Meter("centavo/http")

	httpDuration = newHistogram("http.server.request.duration", "HTTP request duration in seconds")
	httpTotal    = newCounter("http.server.request.total", "Total HTTP requests")
)

func newHistogram(name, desc string) metric.Float64Histogram {
	h, _ := httpMeter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	return h
}

func newCounter(name, desc string) metric.Int64Counter {
	c, _ := httpMeter.Int64Counter(name, metric.WithDescription(desc))
	return c
}

// Tracing opens a server span per request and records duration and count
// metrics labeled by method, route, and status.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := httpTracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		start := time.Now()
		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		recordRequest(ctx, span, r, wrapped.Status(), time.Since(start))
	})
}

func recordRequest(ctx context.Context, span trace.Span, r *http.Request, status int, elapsed time.Duration) {
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", r.URL.Path),
		attribute.Int("http.status_code", status),
	)
	httpDuration.Record(ctx, elapsed.Seconds(), attrs)
	httpTotal.Add(ctx, 1, attrs)
}
