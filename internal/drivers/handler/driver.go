package handler

import (
	"encoding/json"
	"net/http"

	"cabmarket/internal/drivers/service"
	httputil "cabmarket/pkg/http"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/middleware"
	"cabmarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DriverHandler struct {
	service service.DriverService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewDriverHandler(service service.DriverService, auth *middleware.Authenticator, log *logger.Logger) *DriverHandler {
	return &DriverHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var driver model.Driver
	if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &driver); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, driver); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	driver, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	drivers, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, drivers, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *DriverHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	drivers, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, drivers); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "error", err)
	}
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.DriverUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	driver, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DriverHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/driver", h.auth.RequireUser(h.List))
	router.GET("/driver/search", h.auth.RequireUser(h.Search))
	router.GET("/driver/id/:id", h.auth.RequireUser(h.GetByID))
	router.POST("/driver", h.auth.RequireAdmin(h.Create))
	router.PATCH("/driver/id/:id", h.auth.RequireAdmin(h.Update))
	router.DELETE("/driver/id/:id", h.auth.RequireAdmin(h.Delete))
}
