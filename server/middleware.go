package server

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const userIDKey contextKey = "userID"

// Headers set by the upstream auth gateway. Authentication itself happens
// before requests reach this service; these carry the verified identity.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// requireUser rejects requests without a verified user identity and puts
// the user id into the request context
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(headerUserID)
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid user identity"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates the approval queue behind the admin role
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerUserRole) != "admin" {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userIDFrom extracts the authenticated user id placed by requireUser
func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}
