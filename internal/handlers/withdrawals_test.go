package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"giftswap/internal/middleware"
	"giftswap/internal/services"
)

func TestSubmitWithdrawalCreated(t *testing.T) {
	var captured services.SubmitWithdrawalRequest
	handler := newTestHandler(testDeps{
		payoutService: stubWithdrawalService{
			submitFn: func(_ context.Context, req services.SubmitWithdrawalRequest) (string, error) {
				captured = req
				return "wd-1", nil
			},
		},
	})
	body := []byte(`{"bank_account_id":"bank-1","amount":"40.00"}`)
	req := authedRequest(t, http.MethodPost, "/withdrawals", body)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.SubmitWithdrawal)).ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if captured.UserID != "user-1" || captured.BankAccountID != "bank-1" || captured.AmountMinor != 4000 {
		t.Fatalf("unexpected request: %#v", captured)
	}
}

func TestSubmitWithdrawalMissingBankAccount(t *testing.T) {
	handler := newTestHandler(testDeps{})
	body := []byte(`{"amount":"40.00"}`)
	req := authedRequest(t, http.MethodPost, "/withdrawals", body)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.SubmitWithdrawal)).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSubmitWithdrawalBadAmount(t *testing.T) {
	handler := newTestHandler(testDeps{
		payoutService: stubWithdrawalService{
			submitFn: func(context.Context, services.SubmitWithdrawalRequest) (string, error) {
				t.Fatalf("service should not be called")
				return "", nil
			},
		},
	})
	for _, amount := range []string{"abc", "0", "-5", "1.999"} {
		body, _ := json.Marshal(map[string]string{"bank_account_id": "bank-1", "amount": amount})
		req := authedRequest(t, http.MethodPost, "/withdrawals", body)
		rr := httptest.NewRecorder()
		middleware.Auth("secret")(http.HandlerFunc(handler.SubmitWithdrawal)).ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, rr.Code)
		}
	}
}

func TestSubmitWithdrawalInsufficientFunds(t *testing.T) {
	handler := newTestHandler(testDeps{
		payoutService: stubWithdrawalService{
			submitFn: func(context.Context, services.SubmitWithdrawalRequest) (string, error) {
				return "", services.ErrInsufficientFunds
			},
		},
	})
	body := []byte(`{"bank_account_id":"bank-1","amount":"40.00"}`)
	req := authedRequest(t, http.MethodPost, "/withdrawals", body)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.SubmitWithdrawal)).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListWithdrawalsAddsAmount(t *testing.T) {
	handler := newTestHandler(testDeps{
		withdrawals: stubWithdrawalStore{
			listByUserFn: func(context.Context, string, int, int) ([]map[string]any, error) {
				return []map[string]any{{"id": "wd-1", "amount_minor": int64(4000)}}, nil
			},
		},
	})
	req := authedRequest(t, http.MethodGet, "/withdrawals", nil)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.ListWithdrawals)).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["amount"] != "40.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
