package middleware

import (
	"net/http"
	"time"

	"github.com/klfajardo/registro-evento-chile/internal/metrics"
)

// Metrics records request counts and latency per route template
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := NewResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, RouteName(r), wrapped.Status(), time.Since(start))
		})
	}
}
