package httpx

import (
	"net/http"
	"strings"

	"github.com/matheuspina/avaliatec/pkg/jwtx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token and injects the identity into the
// request context. Any failure is a 401 UNAUTHORIZED.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			ctx = ContextWithClaims(ctx, claims)
			ctx = slogx.With(ctx, "auth_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header. Browsers
// cannot set headers on websocket upgrades, so an access_token query
// parameter is accepted for those.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		return raw, raw != ""
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		raw := r.URL.Query().Get("access_token")
		return raw, raw != ""
	}
	return "", false
}

func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
}
