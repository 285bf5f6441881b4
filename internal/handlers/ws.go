package handlers

import (
	"net/http"

	"giftswap/internal/auth"
	"giftswap/internal/websocket"
)

// WSEvents upgrades to a per-user change feed. Browsers cannot set an
// Authorization header on websocket dials, so the token rides in the query.
func (h *Handler) WSEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "token required")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
