package api

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the opaque user id set by the auth proxy.
const UserHeader = "X-User-ID"

type ctxKey struct{}

// RequireUser rejects requests without an identity with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserHeader))
		if id == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// externalID returns the identity stored by RequireUser.
func externalID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
