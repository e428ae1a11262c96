package handler

import (
	"net/http"

	"github.com/klfajardo/registro-evento-chile/internal/api/middleware"
	"github.com/klfajardo/registro-evento-chile/internal/api/request"
	"github.com/klfajardo/registro-evento-chile/internal/api/response"
	"github.com/klfajardo/registro-evento-chile/internal/services/registration"
)

// RegistrationHandler handles attendee registration endpoints
type RegistrationHandler struct {
	registration *registration.Service
	defaultSite  string
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registration *registration.Service, defaultSite string) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		defaultSite:  defaultSite,
	}
}

// Register handles POST /api/register
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.DNI.String() == "" || req.Nombres.String() == "" {
		WriteError(w, NewInvalidRequestError("dni and nombres are required"))
		return
	}

	site := middleware.GetStation(r.Context()).SiteOr(h.defaultSite)
	res, err := h.registration.Register(r.Context(), req.Fields(site))
	if err != nil {
		WriteError(w, err)
		return
	}

	if res.Offline {
		response.JSON(w, http.StatusOK, response.Offline())
		return
	}
	response.JSON(w, http.StatusOK, response.RegisterResponse{Success: true, UUID: res.UUID})
}

// Import handles POST /api/import
func (h *RegistrationHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req request.ImportRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if len(req.Records) == 0 {
		WriteError(w, NewInvalidRequestError("records is required"))
		return
	}

	sum, err := h.registration.Import(r.Context(), req.Rows())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ImportResponse{
		Success:  true,
		Imported: sum.Imported,
		Skipped:  sum.Skipped,
	})
}
