package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/origin"
	"github.com/plankhq/plank/internal/service"
)

// IdentityKey is the context key under which the authenticated identity is
// stored.
const IdentityKey contextKey = "identity"

// OriginKey is the context key under which the request's origin class is
// stored.
const OriginKey contextKey = "origin_class"

// Authenticate returns an HTTP middleware that gates requests by network
// origin and credential. Loopback and private LAN requests pass through
// untouched. Public requests must carry a valid API key in apiKeyHeader, or
// an Authorization bearer holding either a session token or a raw API key; a
// missing credential is a 401, an unusable one a 403, and both denials echo
// the requester address in the error context.
func Authenticate(svc *service.AuthService, apiKeyHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := RemoteHost(r)
			class := origin.Classify(host)
			ctx := context.WithValue(r.Context(), OriginKey, class)

			rawKey := r.Header.Get(apiKeyHeader)

			if rawKey == "" && !class.Trusted() {
				if token, ok := bearerToken(r); ok {
					if principal, err := svc.ValidateJWT(ctx, token); err == nil {
						identity := &service.Identity{UserID: &principal.UserID}
						ctx = context.WithValue(ctx, IdentityKey, identity)
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
					// Not a session token; the bearer value may be a raw
					// API key.
					rawKey = token
				}
			}

			identity, err := svc.Authenticate(ctx, class, rawKey)
			if err != nil {
				switch err {
				case service.ErrMissingCredential:
					writeAuthError(w, http.StatusUnauthorized, "authentication required",
						map[string]interface{}{"remote_addr": host})
				default:
					writeAuthError(w, http.StatusForbidden, "invalid or revoked API key",
						map[string]interface{}{"remote_addr": host})
				}
				return
			}

			ctx = context.WithValue(ctx, IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the authenticated identity from the context. Returns
// nil if the request did not pass through the auth middleware.
func GetIdentity(ctx context.Context) *service.Identity {
	if id, ok := ctx.Value(IdentityKey).(*service.Identity); ok {
		return id
	}
	return nil
}

// GetOrigin extracts the request's origin class from the context.
func GetOrigin(ctx context.Context) origin.Class {
	if class, ok := ctx.Value(OriginKey).(origin.Class); ok {
		return class
	}
	return origin.Public
}

// RemoteHost returns the bare host portion of the request's remote address.
// Addresses without a port are returned as-is.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return token, true
	}
	return "", false
}

func writeAuthError(w http.ResponseWriter, status int, message string, errCtx map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    status,
			Message: message,
			Context: errCtx,
		},
	})
}
