package handlers

import (
	"encoding/json"
	"net/http"

	"giftswap/internal/middleware"
	"giftswap/internal/services"
)

type submitWithdrawalRequest struct {
	BankAccountID string `json:"bank_account_id"`
	Amount        string `json:"amount"`
}

func (h *Handler) SubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req submitWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.BankAccountID == "" {
		respondError(w, http.StatusBadRequest, "bank_account_id is required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	withdrawalID, err := h.payoutService.Submit(r.Context(), services.SubmitWithdrawalRequest{
		UserID:        userID,
		BankAccountID: req.BankAccountID,
		AmountMinor:   amountMinor,
	})
	if err != nil {
		switch err {
		case services.ErrInsufficientFunds:
			respondError(w, http.StatusBadRequest, "insufficient_funds")
		case services.ErrBankAccountNotFound:
			respondError(w, http.StatusNotFound, "bank_account_not_found")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		default:
			respondError(w, http.StatusInternalServerError, "withdrawal_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"withdrawal_id": withdrawalID})
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	withdrawals, err := h.withdrawals.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load withdrawals")
		return
	}
	for _, record := range withdrawals {
		record["amount"] = valueToMoney(record["amount_minor"])
	}
	respondJSON(w, http.StatusOK, withdrawals)
}
