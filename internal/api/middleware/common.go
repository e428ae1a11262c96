package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/klfajardo/registro-evento-chile/internal/api/apierr"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/middleware"
)

// Common returns the middleware every route runs through, outermost first
func Common(logger *slog.Logger, m *metrics.Metrics) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		Recovery(logger),
		middleware.Logging(logger),
		middleware.Metrics(m),
	}
}

// Recovery creates panic recovery middleware answering in the API error format
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
