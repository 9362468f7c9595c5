package server

import (
	"context"
	"net/http"
	"strings"

	svcErr "github.com/oduya/pendo/internal/errors"
)

type ctxKey int

const userIDKey ctxKey = iota

// RequireUser extracts the acting user from the X-User-ID header.
// Authentication mechanics live outside this service; the header stands
// in for the session identity the client platform establishes.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			svcErr.WriteError(w, svcErr.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the acting user set by RequireUser, or "" outside it.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}
