package handler

import (
	"encoding/json"
	"net/http"

	"cabmarket/internal/bookings/service"
	apperrors "cabmarket/pkg/errors"
	httputil "cabmarket/pkg/http"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/middleware"
	"cabmarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *BookingHandler) identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
		}
		return middleware.Identity{}, false
	}
	return *identity, true
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), identity, &booking); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), identity, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

// List returns the caller's own bookings, newest first. Supports
// status=active|inactive|all plus limit and offset.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	status, err := httputil.ExtractStatusFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.service.ListByUser(r.Context(), identity, status, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status, err := httputil.ExtractStatusFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.service.ListAll(r.Context(), status, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListAll", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Update(r.Context(), identity, ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), identity, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Booking cancelled", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) Claim(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	points, err := h.service.Claim(r.Context(), identity, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Claim", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]float64{"wallet_points": points}); err != nil {
		h.log.Error("failed to write success response", "handler", "Claim", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bookcab", h.auth.RequireUser(h.Create))
	router.GET("/bookcab", h.auth.RequireUser(h.List))
	router.GET("/bookcab/all", h.auth.RequireAdmin(h.ListAll))
	router.GET("/bookcab/id/:id", h.auth.RequireUser(h.GetByID))
	router.PATCH("/bookcab/id/:id", h.auth.RequireUser(h.Update))
	router.POST("/bookcab/cancel/:id", h.auth.RequireUser(h.Cancel))
	router.POST("/bookcab/claim/:id", h.auth.RequireUser(h.Claim))
}
