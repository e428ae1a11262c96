package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/klfajardo/registro-evento-chile/internal/api/handler"
	"github.com/klfajardo/registro-evento-chile/internal/api/middleware"
	"github.com/klfajardo/registro-evento-chile/internal/api/response"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/services/access"
	"github.com/klfajardo/registro-evento-chile/internal/services/badge"
	"github.com/klfajardo/registro-evento-chile/internal/services/query"
	"github.com/klfajardo/registro-evento-chile/internal/services/registration"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Registration *registration.Service
	Badge        *badge.Service
	Access       *access.Service
	Query        *query.Service

	// AdminToken guards bulk import; empty disables the check
	AdminToken string
	// DefaultSite is used when neither the body nor the station names a site
	DefaultSite string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	registrationHandler := handler.NewRegistrationHandler(cfg.Registration, cfg.DefaultSite)
	badgeHandler := handler.NewBadgeHandler(cfg.Badge)
	accessHandler := handler.NewAccessHandler(cfg.Access, cfg.DefaultSite)
	queryHandler := handler.NewQueryHandler(cfg.Query)

	// Common middleware
	r.Use(middleware.Common(cfg.Logger, cfg.Metrics)...)

	// API subrouter; every kiosk request carries its station headers
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Station)

	api.HandleFunc("/register", registrationHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/attendee/{uuid}", queryHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/search", queryHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/pay", badgeHandler.Pay).Methods(http.MethodPost)
	api.HandleFunc("/print", badgeHandler.Print).Methods(http.MethodPost)
	api.HandleFunc("/checkin", accessHandler.CheckIn).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", queryHandler.Dashboard).Methods(http.MethodGet)

	// Admin routes
	adminOnly := middleware.AdminToken(cfg.AdminToken)
	api.Handle("/import", adminOnly(http.HandlerFunc(registrationHandler.Import))).Methods(http.MethodPost)

	// Health and metrics (no station, no auth)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.Text(w, http.StatusOK, "ok")
}
