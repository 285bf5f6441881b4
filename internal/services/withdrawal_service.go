package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"giftswap/internal/db"
	"giftswap/internal/money"
	"giftswap/internal/store"
	"giftswap/internal/websocket"
)

var (
	ErrBankAccountNotFound  = errors.New("bank account not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrWithdrawalNotPending = errors.New("withdrawal already reviewed")
)

type WithdrawalService struct {
	txRunner      db.TxRunner
	wallets       WalletStore
	ledger        LedgerStore
	withdrawals   WithdrawalStore
	bankAccounts  BankAccountStore
	notifications NotificationStore
	audit         AuditStore
	hub           EventHub
}

func NewWithdrawalService(txRunner db.TxRunner, wallets WalletStore, ledger LedgerStore, withdrawals WithdrawalStore, bankAccounts BankAccountStore, notifications NotificationStore, audit AuditStore, hub EventHub) *WithdrawalService {
	return &WithdrawalService{
		txRunner:      txRunner,
		wallets:       wallets,
		ledger:        ledger,
		withdrawals:   withdrawals,
		bankAccounts:  bankAccounts,
		notifications: notifications,
		audit:         audit,
		hub:           hub,
	}
}

type SubmitWithdrawalRequest struct {
	UserID        string
	BankAccountID string
	AmountMinor   int64
}

// Submit re-checks the wallet balance under a row lock and debits it in the
// same transaction that creates the pending withdrawal. A stale client-side
// balance can therefore never overdraw the wallet.
func (s *WithdrawalService) Submit(ctx context.Context, req SubmitWithdrawalRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	account, err := s.bankAccounts.GetByID(ctx, req.BankAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrBankAccountNotFound
		}
		return "", err
	}
	if account.UserID != req.UserID || !account.Visible {
		return "", ErrBankAccountNotFound
	}

	withdrawalID := uuid.NewString()
	var walletID string
	var balanceAfter int64
	var currency string
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		wallet, err := s.wallets.GetUserWalletForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if wallet.Balance < req.AmountMinor {
			return ErrInsufficientFunds
		}
		clearingID, err := s.wallets.GetSystemWallet(ctx, "payout")
		if err != nil {
			return err
		}
		clearing, err := s.wallets.GetForUpdate(ctx, tx, clearingID)
		if err != nil {
			return err
		}
		newBalance := wallet.Balance - req.AmountMinor
		newClearing := clearing.Balance + req.AmountMinor
		walletID = wallet.ID
		balanceAfter = newBalance
		currency = wallet.Currency
		if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalance(ctx, tx, clearingID, newClearing); err != nil {
			return err
		}
		if err := s.withdrawals.Create(ctx, tx, store.WithdrawalInput{
			ID:            withdrawalID,
			UserID:        req.UserID,
			BankAccountID: req.BankAccountID,
			AmountMinor:   req.AmountMinor,
		}); err != nil {
			return err
		}
		entries := []store.LedgerEntryInput{
			{
				ID:          uuid.NewString(),
				ReferenceID: withdrawalID,
				WalletID:    wallet.ID,
				Amount:      -req.AmountMinor,
				Currency:    wallet.Currency,
				Description: "Withdrawal debit",
			},
			{
				ID:          uuid.NewString(),
				ReferenceID: withdrawalID,
				WalletID:    clearingID,
				Amount:      req.AmountMinor,
				Currency:    wallet.Currency,
				Description: "Withdrawal clearing credit",
			},
		}
		if err := ensureBalanced(entries); err != nil {
			return err
		}
		if err := s.ledger.InsertEntries(ctx, tx, entries); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"bank_account_id": req.BankAccountID,
			"amount_minor":    fmt.Sprintf("%d", req.AmountMinor),
		})
		return s.audit.Log(ctx, tx, req.UserID, "withdrawal_submit", "withdrawal", withdrawalID, string(data))
	})
	if err != nil {
		return "", err
	}
	s.hub.BroadcastEvent(req.UserID, websocket.Event{
		Type:    websocket.EventBalance,
		Payload: map[string]any{"wallet_id": walletID, "balance": money.FormatMinor(balanceAfter), "currency": currency},
	})
	s.hub.BroadcastEvent(req.UserID, websocket.Event{
		Type:    websocket.EventWithdrawal,
		Payload: map[string]any{"withdrawal_id": withdrawalID, "status": "pending"},
	})
	return withdrawalID, nil
}

type ReviewWithdrawalRequest struct {
	AgentID      string
	WithdrawalID string
	Approve      bool
	Reason       string
}

// Review settles a pending withdrawal. Approval leaves the money in the
// payout clearing wallet for the bank transfer; rejection refunds the user
// through the ledger.
func (s *WithdrawalService) Review(ctx context.Context, req ReviewWithdrawalRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if !req.Approve && reason == "" {
		return ErrReasonRequired
	}
	var userID string
	var walletID string
	var balanceAfter int64
	var currency string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		withdrawal, err := s.withdrawals.GetForUpdate(ctx, tx, req.WithdrawalID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if withdrawal.Status != "pending" {
			return ErrWithdrawalNotPending
		}
		userID = withdrawal.UserID

		if req.Approve {
			if err := s.withdrawals.SetStatus(ctx, tx, req.WithdrawalID, "approved", req.AgentID, nil); err != nil {
				return err
			}
			body := fmt.Sprintf("Your withdrawal of %s has been approved and is on its way to your bank.", money.FormatMinor(withdrawal.AmountMinor))
			if err := s.notifications.Insert(ctx, tx, uuid.NewString(), withdrawal.UserID, "Withdrawal approved", body); err != nil {
				return err
			}
			return s.audit.Log(ctx, tx, req.AgentID, "withdrawal_approve", "withdrawal", req.WithdrawalID, "{}")
		}

		wallet, err := s.wallets.GetUserWalletForUpdate(ctx, tx, withdrawal.UserID)
		if err != nil {
			return err
		}
		clearingID, err := s.wallets.GetSystemWallet(ctx, "payout")
		if err != nil {
			return err
		}
		clearing, err := s.wallets.GetForUpdate(ctx, tx, clearingID)
		if err != nil {
			return err
		}
		newBalance := wallet.Balance + withdrawal.AmountMinor
		newClearing := clearing.Balance - withdrawal.AmountMinor
		walletID = wallet.ID
		balanceAfter = newBalance
		currency = wallet.Currency
		if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalance(ctx, tx, clearingID, newClearing); err != nil {
			return err
		}
		if err := s.withdrawals.SetStatus(ctx, tx, req.WithdrawalID, "rejected", req.AgentID, &reason); err != nil {
			return err
		}
		entries := []store.LedgerEntryInput{
			{
				ID:          uuid.NewString(),
				ReferenceID: req.WithdrawalID,
				WalletID:    clearingID,
				Amount:      -withdrawal.AmountMinor,
				Currency:    wallet.Currency,
				Description: "Withdrawal refund debit",
			},
			{
				ID:          uuid.NewString(),
				ReferenceID: req.WithdrawalID,
				WalletID:    wallet.ID,
				Amount:      withdrawal.AmountMinor,
				Currency:    wallet.Currency,
				Description: "Withdrawal refund credit",
			},
		}
		if err := ensureBalanced(entries); err != nil {
			return err
		}
		if err := s.ledger.InsertEntries(ctx, tx, entries); err != nil {
			return err
		}
		body := fmt.Sprintf("Your withdrawal was rejected: %s. The amount has been returned to your wallet.", reason)
		if err := s.notifications.Insert(ctx, tx, uuid.NewString(), withdrawal.UserID, "Withdrawal rejected", body); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"reason": reason})
		return s.audit.Log(ctx, tx, req.AgentID, "withdrawal_reject", "withdrawal", req.WithdrawalID, string(data))
	})
	if err != nil {
		return err
	}
	status := "rejected"
	if req.Approve {
		status = "approved"
	}
	s.hub.BroadcastEvent(userID, websocket.Event{
		Type:    websocket.EventWithdrawal,
		Payload: map[string]any{"withdrawal_id": req.WithdrawalID, "status": status},
	})
	if !req.Approve {
		s.hub.BroadcastEvent(userID, websocket.Event{
			Type:    websocket.EventBalance,
			Payload: map[string]any{"wallet_id": walletID, "balance": money.FormatMinor(balanceAfter), "currency": currency},
		})
	}
	s.hub.BroadcastEvent(userID, websocket.Event{Type: websocket.EventNotification})
	return nil
}
