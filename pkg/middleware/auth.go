package middleware

import (
	"context"
	"net/http"
	"strings"

	"cabmarket/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const (
	identityKey contextKey = "identity"

	bearerPrefix = "Bearer "
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
}

type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens and gates routes per caller role.
type Authenticator struct {
	secret []byte
	log    *logger.Logger
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	if secret == "" {
		log.Fatal("JWT secret is not configured")
	}
	return &Authenticator{
		secret: []byte(secret),
		log:    log,
	}
}

// RequireUser rejects unauthenticated requests before they reach the
// handler. The caller identity lands in the request context.
func (a *Authenticator) RequireUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, ok := a.authenticate(w, r)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireAdmin additionally rejects non-admin callers with 403.
func (a *Authenticator) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if !identity.IsAdmin {
			a.log.Warn("Admin route rejected",
				"request_id", requestIDFromContext(r.Context()),
				"user_id", identity.UserID,
				"path", r.URL.Path,
			)
			writeAuthError(w, http.StatusForbidden, "Administrator access required")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		writeAuthError(w, http.StatusUnauthorized, "Missing bearer token")
		return nil, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimPrefix(header, bearerPrefix),
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		},
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		a.log.Warn("Token validation failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
		return nil, false
	}

	return &Identity{
		UserID:  claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, true
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// ContextWithIdentity is used by handler tests to inject a caller.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
