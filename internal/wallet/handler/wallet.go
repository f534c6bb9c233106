package handler

import (
	"net/http"

	"cabmarket/internal/wallet/service"
	apperrors "cabmarket/pkg/errors"
	httputil "cabmarket/pkg/http"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type WalletHandler struct {
	service service.WalletService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewWalletHandler(service service.WalletService, auth *middleware.Authenticator, log *logger.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

// Statement returns the caller's balance and entry history, newest
// first.
func (h *WalletHandler) Statement(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Statement", "error", writeErr)
		}
		return
	}

	statement, total, err := h.service.Statement(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Statement", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, statement, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Statement", "error", err)
	}
}

func (h *WalletHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/wallet", h.auth.RequireUser(h.Statement))
}
