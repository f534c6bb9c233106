package handler

import (
	"encoding/json"
	"net/http"

	"cabmarket/internal/reviews/service"
	apperrors "cabmarket/pkg/errors"
	httputil "cabmarket/pkg/http"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/middleware"
	"cabmarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReviewHandler struct {
	service service.ReviewService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, auth *middleware.Authenticator, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *ReviewHandler) identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
		}
		return middleware.Identity{}, false
	}
	return *identity, true
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var review model.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), identity.UserID, &review); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReviewHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	review, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, review); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReviewHandler) ListByCar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByCar", "error", writeErr)
		}
		return
	}

	reviews, total, err := h.service.ListByCar(r.Context(), ps.ByName("carId"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByCar", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reviews, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByCar", "error", err)
	}
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	review, err := h.service.Update(r.Context(), identity.UserID, identity.IsAdmin, ps.ByName("id"), body.Content)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, review); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, identity.IsAdmin, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/reviews/car/:carId", h.ListByCar)
	router.GET("/reviews/id/:id", h.GetByID)
	router.POST("/reviews", h.auth.RequireUser(h.Create))
	router.PATCH("/reviews/id/:id", h.auth.RequireUser(h.Update))
	router.DELETE("/reviews/id/:id", h.auth.RequireUser(h.Delete))
}
