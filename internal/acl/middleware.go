// internal/acl/middleware.go
//
// Chi middleware helpers that enforce RBAC.

package acl

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/auth"
)

// Checker is satisfied by *Store.
type Checker interface {
	UserRoles(ctx context.Context, userID int64) ([]string, error)
	Allowed(ctx context.Context, userID int64, component, action string) (bool, error)
}

// RequireRole ensures the current user possesses ANY of the supplied roles.
func RequireRole(c Checker, names ...string) func(http.Handler) http.Handler {
	if len(names) == 0 {
		panic("acl.RequireRole: at least one role name must be supplied")
	}
	allowSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowSet[n] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserID(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			roles, err := c.UserRoles(r.Context(), uid)
			if err != nil {
				zap.L().Error("acl user roles", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			for _, rname := range roles {
				if _, ok := allowSet[rname]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequirePermission verifies that the user's roles allow component/action.
func RequirePermission(c Checker, component, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserID(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			allowed, err := c.Allowed(r.Context(), uid, component, action)
			if err != nil {
				zap.L().Error("acl check", zap.Error(err),
					zap.String("component", component), zap.String("action", action))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !allowed {
				zap.L().Info("acl denied", zap.Int64("user_id", uid),
					zap.String("component", component), zap.String("action", action))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
