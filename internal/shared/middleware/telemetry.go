package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry instruments every request with otelhttp: a span per request
// plus the standard HTTP server metrics.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewMiddleware("centavo-api")(next)
}
