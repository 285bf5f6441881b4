package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"giftswap/internal/middleware"
	"giftswap/internal/services"
	"giftswap/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) AgentListTrades(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}
	limit, offset := parsePagination(r)
	trades, err := h.trades.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load trades")
		return
	}
	respondJSON(w, http.StatusOK, normalizeTrades(trades))
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

func (h *Handler) ReviewTrade(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	err := h.tradeService.Review(r.Context(), services.ReviewTradeRequest{
		AgentID: agentID,
		TradeID: chi.URLParam(r, "id"),
		Approve: req.Approve,
		Reason:  req.Reason,
	})
	if err != nil {
		switch err {
		case services.ErrTradeNotFound:
			respondError(w, http.StatusNotFound, "trade_not_found")
		case services.ErrAlreadyReviewed:
			respondError(w, http.StatusConflict, "already_reviewed")
		case services.ErrReasonRequired:
			respondError(w, http.StatusBadRequest, "reason_required")
		case services.ErrFloatExhausted:
			respondError(w, http.StatusConflict, "trading_float_exhausted")
		default:
			respondError(w, http.StatusInternalServerError, "review_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reviewed"})
}

func (h *Handler) AgentListWithdrawals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}
	limit, offset := parsePagination(r)
	withdrawals, err := h.withdrawals.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load withdrawals")
		return
	}
	for _, record := range withdrawals {
		record["amount"] = valueToMoney(record["amount_minor"])
	}
	respondJSON(w, http.StatusOK, withdrawals)
}

func (h *Handler) ReviewWithdrawal(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	err := h.payoutService.Review(r.Context(), services.ReviewWithdrawalRequest{
		AgentID:      agentID,
		WithdrawalID: chi.URLParam(r, "id"),
		Approve:      req.Approve,
		Reason:       req.Reason,
	})
	if err != nil {
		switch err {
		case services.ErrWithdrawalNotFound:
			respondError(w, http.StatusNotFound, "withdrawal_not_found")
		case services.ErrWithdrawalNotPending:
			respondError(w, http.StatusConflict, "already_reviewed")
		case services.ErrReasonRequired:
			respondError(w, http.StatusBadRequest, "reason_required")
		default:
			respondError(w, http.StatusInternalServerError, "review_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reviewed"})
}

type upsertCardRequest struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ImageURL       *string `json:"image_url"`
	PhysicalRate   *string `json:"physical_rate"`
	ElectronicRate *string `json:"electronic_rate"`
}

func (h *Handler) UpsertCard(w http.ResponseWriter, r *http.Request) {
	agentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req upsertCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.PhysicalRate != nil {
		if _, err := parseRate(*req.PhysicalRate); err != nil {
			respondError(w, http.StatusBadRequest, "invalid physical_rate")
			return
		}
	}
	if req.ElectronicRate != nil {
		if _, err := parseRate(*req.ElectronicRate); err != nil {
			respondError(w, http.StatusBadRequest, "invalid electronic_rate")
			return
		}
	}
	cardID := req.ID
	if cardID == "" {
		cardID = uuid.NewString()
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.cards.Upsert(r.Context(), tx, store.CardInput{
			ID:             cardID,
			Name:           req.Name,
			ImageURL:       req.ImageURL,
			PhysicalRate:   req.PhysicalRate,
			ElectronicRate: req.ElectronicRate,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"name": req.Name})
		return h.audit.Log(r.Context(), tx, agentID, "card_upsert", "gift_card", cardID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save card")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": cardID})
}

func (h *Handler) AgentListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	users, err := h.users.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type promoteRequest struct {
	Email string `json:"email"`
}

func (h *Handler) PromoteAgent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.agents.IsAgent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify agent")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_agent_required")
		return
	}
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	target, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	targetUserID := valueToString(target["id"])
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.agents.CreateAgent(r.Context(), tx, targetUserID, false, &userID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"target_user_id": targetUserID})
		return h.audit.Log(r.Context(), tx, userID, "promote_agent", "agent", targetUserID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote agent")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "promoted"})
}

type grantRoleRequest struct {
	AgentUserID string `json:"agent_user_id"`
	Role        string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.agents.IsAgent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify agent")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_agent_required")
		return
	}
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentUserID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	isAgent, targetSuper, err := h.agents.IsAgent(r.Context(), req.AgentUserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify target agent")
		return
	}
	if !isAgent {
		respondError(w, http.StatusBadRequest, "target is not an agent")
		return
	}
	if targetSuper {
		respondError(w, http.StatusBadRequest, "cannot assign roles to super agent")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.agents.GrantRole(r.Context(), tx, req.AgentUserID, req.Role); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"agent_user_id": req.AgentUserID,
			"role":          req.Role,
		})
		return h.audit.Log(r.Context(), tx, userID, "grant_role", "agent_role", req.AgentUserID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "granted"})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
