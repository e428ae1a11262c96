package handler

import (
	"cmp"
	"net/http"
	"strings"

	"github.com/klfajardo/registro-evento-chile/internal/api/middleware"
	"github.com/klfajardo/registro-evento-chile/internal/api/request"
	"github.com/klfajardo/registro-evento-chile/internal/api/response"
	"github.com/klfajardo/registro-evento-chile/internal/services/access"
)

// AccessHandler handles talk check-ins
type AccessHandler struct {
	access      *access.Service
	defaultSite string
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(access *access.Service, defaultSite string) *AccessHandler {
	return &AccessHandler{
		access:      access,
		defaultSite: defaultSite,
	}
}

// CheckIn handles POST /api/checkin. session_id and sede fall back to the
// station headers when the body leaves them out.
func (h *AccessHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req request.CheckInRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	station := middleware.GetStation(r.Context())
	sessionID := cmp.Or(strings.TrimSpace(req.SessionID), station.SessionID)
	site := cmp.Or(strings.TrimSpace(req.Sede), station.SiteOr(h.defaultSite))

	if strings.TrimSpace(req.UUID) == "" || sessionID == "" {
		WriteError(w, NewInvalidRequestError("uuid, session_id and sede are required"))
		return
	}

	offline, err := h.access.CheckIn(r.Context(), req.UUID, sessionID, site)
	if err != nil {
		WriteError(w, err)
		return
	}

	if offline {
		response.JSON(w, http.StatusOK, response.Offline())
		return
	}
	response.JSON(w, http.StatusOK, response.OK())
}
