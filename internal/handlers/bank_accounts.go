package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"giftswap/internal/middleware"
	"giftswap/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type createBankAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

func (h *Handler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.BankName = strings.TrimSpace(req.BankName)
	req.HolderName = strings.TrimSpace(req.HolderName)
	if req.BankName == "" || req.HolderName == "" {
		respondError(w, http.StatusBadRequest, "bank_name and holder_name are required")
		return
	}
	if err := validator.ValidateAccountNumber(req.AccountNumber); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	accountID := uuid.NewString()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.bankAccounts.Create(r.Context(), tx, accountID, userID, req.BankName, req.AccountNumber, req.HolderName); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"bank_name": req.BankName})
		return h.audit.Log(r.Context(), tx, userID, "bank_account_add", "bank_account", accountID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save bank account")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": accountID})
}

func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.bankAccounts.ListVisible(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load bank accounts")
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) HideBankAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	var hidden int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		count, err := h.bankAccounts.Hide(r.Context(), tx, accountID, userID)
		if err != nil {
			return err
		}
		hidden = count
		if count == 0 {
			return nil
		}
		return h.audit.Log(r.Context(), tx, userID, "bank_account_hide", "bank_account", accountID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to remove bank account")
		return
	}
	if hidden == 0 {
		respondError(w, http.StatusNotFound, "bank account not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "hidden"})
}
