package handlers

import (
	"database/sql"
	"net/http"

	"giftswap/internal/middleware"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallets.GetByUser(r.Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "wallet not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load wallet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"wallet_id":      wallet.ID,
		"currency":       wallet.Currency,
		"balance":        valueToMoney(wallet.StoredBalance),
		"ledger_balance": valueToMoney(wallet.CalculatedBalance),
		"difference":     valueToMoney(wallet.Difference),
		"created_at":     wallet.CreatedAt,
	})
}

func (h *Handler) ListWalletEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallets.GetByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "wallet not found")
		return
	}
	limit, offset := parsePagination(r)
	entries, err := h.ledger.ListByWallet(r.Context(), wallet.ID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load entries")
		return
	}
	for _, entry := range entries {
		entry["amount"] = valueToMoney(entry["amount"])
	}
	respondJSON(w, http.StatusOK, entries)
}
