package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/httpx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

const (
	CodeForbidden     = "FORBIDDEN"
	CodeAdminRequired = "ADMIN_REQUIRED"
)

type ctxKey string

const ctxKeyUser ctxKey = "crm_user"

// UserFromContext returns the application user placed by RequireUser.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// ContextWithUser stores the application user the way RequireUser does.
func ContextWithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// RequireUser maps the verified identity onto an active application user.
// It must run after httpx.AuthnMiddleware.
func RequireUser(users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authID, ok := httpx.AuthIDFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
				return
			}

			u, err := users.Current(r.Context(), authID)
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				httpx.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "No application user is linked to this identity")
				return
			case errors.Is(err, service.ErrUserInactive):
				httpx.WriteError(w, http.StatusForbidden, "USER_INACTIVE", "User is inactive")
				return
			case err != nil:
				writeServiceError(w, r, err)
				return
			}

			ctx := ContextWithUser(r.Context(), u)
			ctx = slogx.WithUserID(ctx, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSection checks the caller's resolved permissions for section. The
// action is derived from the request method. It must run after RequireUser.
func RequireSection(perms *service.PermissionService, section access.Section) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
				return
			}

			action := access.ActionForMethod(r.Method)
			if !perms.Has(r.Context(), u.ID, section, action) {
				slogx.FromContext(r.Context()).Info("permission denied",
					"section", section.Key(),
					"action", string(action),
				)
				httpx.WriteErrorWith(w, http.StatusForbidden, CodeForbidden, "Insufficient permissions", map[string]any{
					"section": section.Key(),
					"action":  action,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets members of the administrator group through.
func RequireAdmin(perms *service.PermissionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Authentication required")
				return
			}

			admin, err := perms.IsAdmin(r.Context(), u.ID)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			if !admin {
				httpx.WriteError(w, http.StatusForbidden, CodeAdminRequired, "Administrator access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
