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
	"giftswap/internal/trade"
	"giftswap/internal/websocket"
)

var (
	ErrCardNotFound      = errors.New("card not found")
	ErrEvidenceMissing   = errors.New("evidence upload not found")
	ErrTradeNotFound     = errors.New("trade not found")
	ErrAlreadyReviewed   = errors.New("trade already reviewed")
	ErrReasonRequired    = errors.New("rejection reason required")
	ErrFloatExhausted    = errors.New("trading float exhausted")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ValidationError carries the intake rules a draft violated.
type ValidationError struct {
	Rules []trade.Rule
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Rules))
	for _, rule := range e.Rules {
		parts = append(parts, string(rule))
	}
	return "trade validation failed: " + strings.Join(parts, ", ")
}

type TradeService struct {
	txRunner      db.TxRunner
	cards         CardStore
	trades        TradeStore
	evidence      EvidenceStore
	wallets       WalletStore
	ledger        LedgerStore
	notifications NotificationStore
	audit         AuditStore
	hub           EventHub
}

func NewTradeService(txRunner db.TxRunner, cards CardStore, trades TradeStore, evidence EvidenceStore, wallets WalletStore, ledger LedgerStore, notifications NotificationStore, audit AuditStore, hub EventHub) *TradeService {
	return &TradeService{
		txRunner:      txRunner,
		cards:         cards,
		trades:        trades,
		evidence:      evidence,
		wallets:       wallets,
		ledger:        ledger,
		notifications: notifications,
		audit:         audit,
		hub:           hub,
	}
}

type SubmitTradeRequest struct {
	UserID      string
	CardID      string
	Variant     string
	Amount      string
	Code        string
	EvidenceIDs []string
}

// Submit validates the draft, snapshots the catalog rate, computes the payout
// and persists the pending trade together with its evidence claims in a
// single transaction. A later catalog change never alters the stored rate.
func (s *TradeService) Submit(ctx context.Context, req SubmitTradeRequest) (string, error) {
	draft := trade.Draft{
		Variant: trade.Variant(req.Variant),
		Amount:  req.Amount,
		Code:    req.Code,
		Images:  req.EvidenceIDs,
	}
	if req.CardID != "" {
		card, err := s.cards.GetByID(ctx, req.CardID)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", ErrCardNotFound
			}
			return "", err
		}
		draft.Card = &card
	}
	if rules := trade.Validate(draft); rules != nil {
		return "", &ValidationError{Rules: rules}
	}
	faceMinor, err := money.ParseMinor(req.Amount)
	if err != nil {
		return "", &ValidationError{Rules: []trade.Rule{trade.RuleInvalidAmount}}
	}
	rate := trade.ResolveRate(*draft.Card, draft.Variant)
	payoutMinor := trade.PayoutMinor(faceMinor, rate)

	var code *string
	if trimmed := strings.TrimSpace(req.Code); trimmed != "" {
		code = &trimmed
	}
	tradeID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.trades.Create(ctx, tx, store.TradeInput{
			ID:             tradeID,
			UserID:         req.UserID,
			CardID:         req.CardID,
			Variant:        string(draft.Variant),
			FaceValueMinor: faceMinor,
			Rate:           rate.String(),
			PayoutMinor:    payoutMinor,
			Code:           code,
		}); err != nil {
			return err
		}
		if len(req.EvidenceIDs) > 0 {
			claimed, err := s.evidence.Claim(ctx, tx, tradeID, req.UserID, req.EvidenceIDs)
			if err != nil {
				return err
			}
			if claimed != int64(len(req.EvidenceIDs)) {
				return ErrEvidenceMissing
			}
		}
		data, _ := json.Marshal(map[string]string{
			"card_id":      req.CardID,
			"variant":      string(draft.Variant),
			"rate":         rate.String(),
			"payout_minor": fmt.Sprintf("%d", payoutMinor),
		})
		return s.audit.Log(ctx, tx, req.UserID, "trade_submit", "trade", tradeID, string(data))
	})
	if err != nil {
		return "", err
	}
	s.hub.BroadcastEvent(req.UserID, websocket.Event{
		Type:    websocket.EventTrade,
		Payload: map[string]any{"trade_id": tradeID, "status": "pending"},
	})
	return tradeID, nil
}

type ReviewTradeRequest struct {
	AgentID string
	TradeID string
	Approve bool
	Reason  string
}

// Review settles a pending trade. Approval credits the payout from the
// trading float to the user's wallet through balanced ledger entries;
// rejection records the reason. Either way the user gets a notification and a
// change event after commit.
func (s *TradeService) Review(ctx context.Context, req ReviewTradeRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if !req.Approve && reason == "" {
		return ErrReasonRequired
	}
	var tradeUserID string
	var walletID string
	var balanceAfter int64
	var currency string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		reviewed, err := s.trades.GetForUpdate(ctx, tx, req.TradeID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrTradeNotFound
			}
			return err
		}
		if reviewed.Status != "pending" {
			return ErrAlreadyReviewed
		}
		tradeUserID = reviewed.UserID

		if !req.Approve {
			if err := s.trades.SetStatus(ctx, tx, req.TradeID, "rejected", req.AgentID, &reason); err != nil {
				return err
			}
			if err := s.notifications.Insert(ctx, tx, uuid.NewString(), reviewed.UserID, "Trade rejected", reason); err != nil {
				return err
			}
			data, _ := json.Marshal(map[string]string{"reason": reason})
			return s.audit.Log(ctx, tx, req.AgentID, "trade_reject", "trade", req.TradeID, string(data))
		}

		wallet, err := s.wallets.GetUserWalletForUpdate(ctx, tx, reviewed.UserID)
		if err != nil {
			return err
		}
		floatID, err := s.wallets.GetSystemWallet(ctx, "trading")
		if err != nil {
			return err
		}
		floatWallet, err := s.wallets.GetForUpdate(ctx, tx, floatID)
		if err != nil {
			return err
		}
		newFloat := floatWallet.Balance - reviewed.PayoutMinor
		if newFloat < 0 {
			return ErrFloatExhausted
		}
		newBalance := wallet.Balance + reviewed.PayoutMinor
		walletID = wallet.ID
		balanceAfter = newBalance
		currency = wallet.Currency
		if err := s.wallets.UpdateBalance(ctx, tx, floatID, newFloat); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
			return err
		}
		if err := s.trades.SetStatus(ctx, tx, req.TradeID, "approved", req.AgentID, nil); err != nil {
			return err
		}
		entries := []store.LedgerEntryInput{
			{
				ID:          uuid.NewString(),
				ReferenceID: req.TradeID,
				WalletID:    floatID,
				Amount:      -reviewed.PayoutMinor,
				Currency:    wallet.Currency,
				Description: "Trade payout debit",
			},
			{
				ID:          uuid.NewString(),
				ReferenceID: req.TradeID,
				WalletID:    wallet.ID,
				Amount:      reviewed.PayoutMinor,
				Currency:    wallet.Currency,
				Description: "Trade payout credit",
			},
		}
		if err := ensureBalanced(entries); err != nil {
			return err
		}
		if err := s.ledger.InsertEntries(ctx, tx, entries); err != nil {
			return err
		}
		body := fmt.Sprintf("Your trade was approved. %s %s has been credited to your wallet.", wallet.Currency, money.FormatMinor(reviewed.PayoutMinor))
		if err := s.notifications.Insert(ctx, tx, uuid.NewString(), reviewed.UserID, "Trade approved", body); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"payout_minor": fmt.Sprintf("%d", reviewed.PayoutMinor),
		})
		return s.audit.Log(ctx, tx, req.AgentID, "trade_approve", "trade", req.TradeID, string(data))
	})
	if err != nil {
		return err
	}
	status := "rejected"
	if req.Approve {
		status = "approved"
	}
	s.hub.BroadcastEvent(tradeUserID, websocket.Event{
		Type:    websocket.EventTrade,
		Payload: map[string]any{"trade_id": req.TradeID, "status": status},
	})
	if req.Approve {
		s.hub.BroadcastEvent(tradeUserID, websocket.Event{
			Type:    websocket.EventBalance,
			Payload: map[string]any{"wallet_id": walletID, "balance": money.FormatMinor(balanceAfter), "currency": currency},
		})
	}
	s.hub.BroadcastEvent(tradeUserID, websocket.Event{Type: websocket.EventNotification})
	return nil
}

func ensureBalanced(entries []store.LedgerEntryInput) error {
	sums := map[string]int64{}
	for _, entry := range entries {
		sums[entry.Currency] += entry.Amount
	}
	for _, sum := range sums {
		if sum != 0 {
			return errors.New("ledger entries are not balanced")
		}
	}
	return nil
}
