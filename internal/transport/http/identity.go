package http

import (
	"context"
	"net/http"

	"github.com/mafirs/campus-reserve/internal/domain"
)

// Actor is the caller identity carried on every authenticated request.
// Identity arrives via trusted headers set by the gateway in front of this
// service; there is no session handling here.
type Actor struct {
	ID   string
	Role domain.Role
}

type actorKey struct{}

// Identity extracts X-User-Id and X-User-Role into the request context.
// Requests without an id are rejected as unauthenticated; unknown roles are
// rejected outright rather than defaulted.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-Id")
		if id == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "missing X-User-Id header")
			return
		}

		role := domain.Role(r.Header.Get("X-User-Role"))
		if role == "" {
			role = domain.RoleMember
		}
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, codeInvalidRole, "unknown role")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, Actor{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}

// RequireRole guards a subtree behind a role check.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actorFromContext(r.Context()).Role != role {
				writeError(w, http.StatusForbidden, codePermissionDenied, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
