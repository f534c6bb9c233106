package handler

import (
	"encoding/json"
	"net/http"

	"cabmarket/internal/cars/service"
	httputil "cabmarket/pkg/http"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/middleware"
	"cabmarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// CarHandler serves the public catalog reads and the admin-only fleet
// management writes.
type CarHandler struct {
	service service.CarService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewCarHandler(service service.CarService, auth *middleware.Authenticator, log *logger.Logger) *CarHandler {
	return &CarHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var car model.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &car); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, car); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *CarHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	car, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, car); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

// List returns the catalog. available=true narrows to cars not held by
// a booking.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	onlyAvailable := r.URL.Query().Get("available") == "true"

	cars, total, err := h.service.List(r.Context(), onlyAvailable, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, cars, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *CarHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	cars, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cars); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "error", err)
	}
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.CarUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	car, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, car); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/cars", h.List)
	router.GET("/cars/search", h.Search)
	router.GET("/cars/id/:id", h.GetByID)
	router.POST("/cars", h.auth.RequireAdmin(h.Create))
	router.PATCH("/cars/id/:id", h.auth.RequireAdmin(h.Update))
	router.DELETE("/cars/id/:id", h.auth.RequireAdmin(h.Delete))
}
