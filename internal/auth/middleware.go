package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/vantagecrm/api/internal/authz"
)

type ctxKey string

const (
	CtxUserID ctxKey = "userID"
	CtxRole   ctxKey = "role"
)

// Middleware validates the Bearer token and stores the requester identity in
// the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(h, "Bearer ")
		claims, err := ParseAndValidate(raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects any request whose token does not carry the ADMIN role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(CtxRole).(authz.Role)
		if role != authz.RoleAdmin {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequesterFrom extracts the authenticated requester from the context.
func RequesterFrom(ctx context.Context) (authz.Requester, bool) {
	userID, ok := ctx.Value(CtxUserID).(uint)
	if !ok {
		return authz.Requester{}, false
	}
	role, ok := ctx.Value(CtxRole).(authz.Role)
	if !ok {
		return authz.Requester{}, false
	}
	return authz.Requester{UserID: userID, Role: role}, true
}
