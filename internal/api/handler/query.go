package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/klfajardo/registro-evento-chile/internal/api/response"
	"github.com/klfajardo/registro-evento-chile/internal/services/query"
)

// QueryHandler handles read-only endpoints
type QueryHandler struct {
	query *query.Service
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(query *query.Service) *QueryHandler {
	return &QueryHandler{
		query: query,
	}
}

// Get handles GET /api/attendee/{uuid}
func (h *QueryHandler) Get(w http.ResponseWriter, r *http.Request) {
	uuid := mux.Vars(r)["uuid"]

	a, err := h.query.Get(r.Context(), uuid)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AttendeeResponse{
		Success:  true,
		Attendee: response.AttendeeJSONFromModel(*a),
	})
}

// Search handles GET /api/search?by=&q=
func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	mode := query.ParseSearchMode(r.URL.Query().Get("by"))

	results, err := h.query.Search(r.Context(), mode, r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SearchResponseFromModel(results))
}

// Dashboard handles GET /api/dashboard
func (h *QueryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.query.Dashboard(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DashboardResponseFromModel(d))
}
