package otel

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// untraced paths: health checks, scrapes and the long-lived websocket.
var untraced = map[string]bool{
	"/health":  true,
	"/metrics": true,
	"/ws":      true,
}

// HTTPMiddleware returns a chi-compatible middleware that creates a server
// span per API request, named "METHOD /path".
func HTTPMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithFilter(func(r *http.Request) bool {
				return !untraced[r.URL.Path]
			}),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
