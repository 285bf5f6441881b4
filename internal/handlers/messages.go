package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"giftswap/internal/middleware"
	"giftswap/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	messages, err := h.messages.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		respondError(w, http.StatusBadRequest, "message body is required")
		return
	}
	messageID := uuid.NewString()
	if err := h.messages.Insert(r.Context(), messageID, userID, "user", nil, body); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to send message")
		return
	}
	h.hub.BroadcastEvent(userID, websocket.Event{
		Type:    websocket.EventMessage,
		Payload: map[string]any{"message_id": messageID},
	})
	respondJSON(w, http.StatusCreated, map[string]string{"id": messageID})
}

func (h *Handler) AgentListThreads(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	threads, err := h.messages.ListThreads(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load threads")
		return
	}
	respondJSON(w, http.StatusOK, threads)
}

func (h *Handler) AgentListMessages(w http.ResponseWriter, r *http.Request) {
	targetUserID := chi.URLParam(r, "userID")
	limit, offset := parsePagination(r)
	messages, err := h.messages.ListByUser(r.Context(), targetUserID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) AgentPostMessage(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetUserID := chi.URLParam(r, "userID")
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		respondError(w, http.StatusBadRequest, "message body is required")
		return
	}
	messageID := uuid.NewString()
	if err := h.messages.Insert(r.Context(), messageID, targetUserID, "agent", &agentID, body); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to send message")
		return
	}
	h.hub.BroadcastEvent(targetUserID, websocket.Event{
		Type:    websocket.EventMessage,
		Payload: map[string]any{"message_id": messageID},
	})
	respondJSON(w, http.StatusCreated, map[string]string{"id": messageID})
}
