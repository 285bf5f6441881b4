package middleware

import (
	"context"
	"net/http"
)

type AgentStore interface {
	IsAgent(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RequireAgent gates a route behind agent membership. Super agents pass any
// role check; an empty role only requires membership.
func RequireAgent(agentStore AgentStore, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			isAgent, isSuper, err := agentStore.IsAgent(r.Context(), userID)
			if err != nil {
				http.Error(w, "unable to verify agent", http.StatusInternalServerError)
				return
			}
			if !isAgent {
				http.Error(w, "agent privileges required", http.StatusForbidden)
				return
			}
			if isSuper || role == "" {
				next.ServeHTTP(w, r)
				return
			}
			hasRole, err := agentStore.HasRole(r.Context(), userID, role)
			if err != nil {
				http.Error(w, "unable to verify agent role", http.StatusInternalServerError)
				return
			}
			if !hasRole {
				http.Error(w, "missing required role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
