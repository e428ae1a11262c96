package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/klfajardo/registro-evento-chile/internal/api/middleware"
	"github.com/klfajardo/registro-evento-chile/internal/api/request"
	"github.com/klfajardo/registro-evento-chile/internal/api/response"
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/services/badge"
)

// BadgeHandler handles payment and print endpoints
type BadgeHandler struct {
	badge *badge.Service
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(badge *badge.Service) *BadgeHandler {
	return &BadgeHandler{
		badge: badge,
	}
}

// Pay handles POST /api/pay. Only cashier and admin stations take payments.
func (h *BadgeHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if st := middleware.GetStation(r.Context()); !st.CanTakePayments() {
		WriteError(w, fmt.Errorf("%w: %q stations cannot take payments", model.ErrRoleNotAllowed, st.Role))
		return
	}

	var req request.PayRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if strings.TrimSpace(req.UUID) == "" {
		WriteError(w, NewInvalidRequestError("uuid is required"))
		return
	}

	if err := h.badge.Pay(r.Context(), req.UUID, req.Medio); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK())
}

// Print handles POST /api/print
func (h *BadgeHandler) Print(w http.ResponseWriter, r *http.Request) {
	var req request.PrintRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if strings.TrimSpace(req.UUID) == "" {
		WriteError(w, NewInvalidRequestError("uuid is required"))
		return
	}

	res, err := h.badge.Print(r.Context(), req.UUID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if res.Offline {
		response.JSON(w, http.StatusOK, response.Offline())
		return
	}
	response.JSON(w, http.StatusOK, response.PrintResponse{
		Success:      true,
		SeImprimioAt: model.FormatTime(res.PrintedAt),
	})
}
