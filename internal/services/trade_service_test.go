package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"giftswap/internal/models"
	"giftswap/internal/store"
	"giftswap/internal/trade"
	"giftswap/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

func stringPtr(value string) *string {
	return &value
}

type stubCardStore struct {
	getByIDFn func(ctx context.Context, cardID string) (models.GiftCard, error)
}

func (s stubCardStore) GetByID(ctx context.Context, cardID string) (models.GiftCard, error) {
	if s.getByIDFn == nil {
		return models.GiftCard{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, cardID)
}

type stubTradeStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.TradeInput) error
	getForUpdateFn func(ctx context.Context, tx store.Getter, tradeID string) (store.TradeForReview, error)
	setStatusFn    func(ctx context.Context, tx store.Execer, tradeID, status, reviewerID string, reason *string) error
}

func (s stubTradeStore) Create(ctx context.Context, tx store.Execer, input store.TradeInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTradeStore) GetForUpdate(ctx context.Context, tx store.Getter, tradeID string) (store.TradeForReview, error) {
	if s.getForUpdateFn == nil {
		return store.TradeForReview{}, sql.ErrNoRows
	}
	return s.getForUpdateFn(ctx, tx, tradeID)
}

func (s stubTradeStore) SetStatus(ctx context.Context, tx store.Execer, tradeID, status, reviewerID string, reason *string) error {
	if s.setStatusFn == nil {
		return nil
	}
	return s.setStatusFn(ctx, tx, tradeID, status, reviewerID, reason)
}

type stubEvidenceStore struct {
	claimFn func(ctx context.Context, tx store.Execer, tradeID, userID string, uploadIDs []string) (int64, error)
}

func (s stubEvidenceStore) Claim(ctx context.Context, tx store.Execer, tradeID, userID string, uploadIDs []string) (int64, error) {
	if s.claimFn == nil {
		return int64(len(uploadIDs)), nil
	}
	return s.claimFn(ctx, tx, tradeID, userID, uploadIDs)
}

type stubWalletStore struct {
	getUserForUpdateFn func(ctx context.Context, tx store.Getter, userID string) (store.Wallet, error)
	getForUpdateFn     func(ctx context.Context, tx store.Getter, walletID string) (store.Wallet, error)
	updateBalanceFn    func(ctx context.Context, tx store.Execer, walletID string, balance int64) error
	getSystemWalletFn  func(ctx context.Context, purpose string) (string, error)
}

func (s stubWalletStore) GetUserWalletForUpdate(ctx context.Context, tx store.Getter, userID string) (store.Wallet, error) {
	return s.getUserForUpdateFn(ctx, tx, userID)
}

func (s stubWalletStore) GetForUpdate(ctx context.Context, tx store.Getter, walletID string) (store.Wallet, error) {
	return s.getForUpdateFn(ctx, tx, walletID)
}

func (s stubWalletStore) UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, walletID, balance)
}

func (s stubWalletStore) GetSystemWallet(ctx context.Context, purpose string) (string, error) {
	if s.getSystemWalletFn == nil {
		return "sys-" + purpose, nil
	}
	return s.getSystemWalletFn(ctx, purpose)
}

type stubLedgerStore struct {
	insertFn func(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error
}

func (s stubLedgerStore) InsertEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, entries)
}

type stubWithdrawalStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.WithdrawalInput) error
	getForUpdateFn func(ctx context.Context, tx store.Getter, withdrawalID string) (store.WithdrawalForReview, error)
	setStatusFn    func(ctx context.Context, tx store.Execer, withdrawalID, status, reviewerID string, reason *string) error
}

func (s stubWithdrawalStore) Create(ctx context.Context, tx store.Execer, input store.WithdrawalInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubWithdrawalStore) GetForUpdate(ctx context.Context, tx store.Getter, withdrawalID string) (store.WithdrawalForReview, error) {
	if s.getForUpdateFn == nil {
		return store.WithdrawalForReview{}, sql.ErrNoRows
	}
	return s.getForUpdateFn(ctx, tx, withdrawalID)
}

func (s stubWithdrawalStore) SetStatus(ctx context.Context, tx store.Execer, withdrawalID, status, reviewerID string, reason *string) error {
	if s.setStatusFn == nil {
		return nil
	}
	return s.setStatusFn(ctx, tx, withdrawalID, status, reviewerID, reason)
}

type stubBankAccountStore struct {
	getByIDFn func(ctx context.Context, accountID string) (models.BankAccount, error)
}

func (s stubBankAccountStore) GetByID(ctx context.Context, accountID string) (models.BankAccount, error) {
	if s.getByIDFn == nil {
		return models.BankAccount{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, accountID)
}

type stubNotificationStore struct {
	insertFn func(ctx context.Context, tx store.Execer, id, userID, title, body string) error
}

func (s stubNotificationStore) Insert(ctx context.Context, tx store.Execer, id, userID, title, body string) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, id, userID, title, body)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubHub struct {
	users  []string
	events []websocket.Event
}

func (s *stubHub) BroadcastEvent(userID string, event websocket.Event) {
	s.users = append(s.users, userID)
	s.events = append(s.events, event)
}

func (s *stubHub) eventTypes() []string {
	types := make([]string, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.Type)
	}
	return types
}

func newTradeService(cards CardStore, trades TradeStore, evidence EvidenceStore, wallets WalletStore, ledger LedgerStore, hub *stubHub) *TradeService {
	if wallets == nil {
		wallets = stubWalletStore{}
	}
	return NewTradeService(fakeTxRunner{}, cards, trades, evidence, wallets, ledger, stubNotificationStore{}, stubAuditStore{}, hub)
}

func TestSubmitTradeValidationFailure(t *testing.T) {
	hub := &stubHub{}
	service := newTradeService(stubCardStore{}, stubTradeStore{
		createFn: func(context.Context, store.Execer, store.TradeInput) error {
			t.Fatalf("unexpected trade insert")
			return nil
		},
	}, stubEvidenceStore{}, nil, stubLedgerStore{}, hub)

	_, err := service.Submit(context.Background(), SubmitTradeRequest{
		UserID: "user-1", Variant: "physical", Amount: "50",
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Rules) != 1 || validationErr.Rules[0] != trade.RuleMissingCard {
		t.Fatalf("unexpected rules: %v", validationErr.Rules)
	}
	if len(hub.events) != 0 {
		t.Fatalf("expected no events for a rejected draft")
	}
}

func TestSubmitTradeCardNotFound(t *testing.T) {
	service := newTradeService(stubCardStore{
		getByIDFn: func(context.Context, string) (models.GiftCard, error) {
			return models.GiftCard{}, sql.ErrNoRows
		},
	}, stubTradeStore{}, stubEvidenceStore{}, nil, stubLedgerStore{}, &stubHub{})

	_, err := service.Submit(context.Background(), SubmitTradeRequest{
		UserID: "user-1", CardID: "missing", Variant: "physical", Amount: "50",
	})
	if err != ErrCardNotFound {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestSubmitTradeSnapshotsRate(t *testing.T) {
	var created store.TradeInput
	var claimedIDs []string
	hub := &stubHub{}
	service := newTradeService(stubCardStore{
		getByIDFn: func(context.Context, string) (models.GiftCard, error) {
			return models.GiftCard{ID: "card-1", Name: "Amazon", PhysicalRate: stringPtr("1500")}, nil
		},
	}, stubTradeStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TradeInput) error {
			created = input
			return nil
		},
	}, stubEvidenceStore{
		claimFn: func(_ context.Context, _ store.Execer, _, _ string, uploadIDs []string) (int64, error) {
			claimedIDs = uploadIDs
			return int64(len(uploadIDs)), nil
		},
	}, nil, stubLedgerStore{}, hub)

	id, err := service.Submit(context.Background(), SubmitTradeRequest{
		UserID:      "user-1",
		CardID:      "card-1",
		Variant:     "physical",
		Amount:      "50",
		EvidenceIDs: []string{"upload-1", "upload-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" || created.ID != id {
		t.Fatalf("unexpected trade id: %q vs %q", id, created.ID)
	}
	if created.FaceValueMinor != 5000 {
		t.Fatalf("unexpected face value: %d", created.FaceValueMinor)
	}
	if created.Rate != "1500" {
		t.Fatalf("unexpected rate snapshot: %q", created.Rate)
	}
	if created.PayoutMinor != 7500000 {
		t.Fatalf("unexpected payout: %d", created.PayoutMinor)
	}
	if len(claimedIDs) != 2 {
		t.Fatalf("expected both uploads claimed, got %v", claimedIDs)
	}
	if len(hub.events) != 1 || hub.events[0].Type != websocket.EventTrade {
		t.Fatalf("unexpected events: %v", hub.eventTypes())
	}
}

func TestSubmitTradeStoresTrimmedCode(t *testing.T) {
	var created store.TradeInput
	service := newTradeService(stubCardStore{
		getByIDFn: func(context.Context, string) (models.GiftCard, error) {
			return models.GiftCard{ID: "card-1", ElectronicRate: stringPtr("1450")}, nil
		},
	}, stubTradeStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TradeInput) error {
			created = input
			return nil
		},
	}, stubEvidenceStore{}, nil, stubLedgerStore{}, &stubHub{})

	_, err := service.Submit(context.Background(), SubmitTradeRequest{
		UserID: "user-1", CardID: "card-1", Variant: "electronic", Amount: "20", Code: "  ABCD-1234  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Code == nil || *created.Code != "ABCD-1234" {
		t.Fatalf("unexpected code: %v", created.Code)
	}
}

func TestSubmitTradeForeignEvidenceRejected(t *testing.T) {
	service := newTradeService(stubCardStore{
		getByIDFn: func(context.Context, string) (models.GiftCard, error) {
			return models.GiftCard{ID: "card-1", PhysicalRate: stringPtr("1500")}, nil
		},
	}, stubTradeStore{}, stubEvidenceStore{
		claimFn: func(context.Context, store.Execer, string, string, []string) (int64, error) {
			return 1, nil
		},
	}, nil, stubLedgerStore{}, &stubHub{})

	_, err := service.Submit(context.Background(), SubmitTradeRequest{
		UserID: "user-1", CardID: "card-1", Variant: "physical", Amount: "50",
		EvidenceIDs: []string{"mine", "someone-elses"},
	})
	if err != ErrEvidenceMissing {
		t.Fatalf("expected ErrEvidenceMissing, got %v", err)
	}
}

func TestReviewTradeRejectNeedsReason(t *testing.T) {
	service := newTradeService(stubCardStore{}, stubTradeStore{}, stubEvidenceStore{}, nil, stubLedgerStore{}, &stubHub{})
	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "trade-1", Approve: false, Reason: "  ",
	})
	if err != ErrReasonRequired {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestReviewTradeNotFound(t *testing.T) {
	service := newTradeService(stubCardStore{}, stubTradeStore{}, stubEvidenceStore{}, nil, stubLedgerStore{}, &stubHub{})
	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "missing", Approve: true,
	})
	if err != ErrTradeNotFound {
		t.Fatalf("expected ErrTradeNotFound, got %v", err)
	}
}

func TestReviewTradeAlreadyReviewed(t *testing.T) {
	service := newTradeService(stubCardStore{}, stubTradeStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.TradeForReview, error) {
			return store.TradeForReview{ID: "trade-1", UserID: "user-1", Status: "approved"}, nil
		},
	}, stubEvidenceStore{}, nil, stubLedgerStore{}, &stubHub{})
	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "trade-1", Approve: true,
	})
	if err != ErrAlreadyReviewed {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestReviewTradeApproveCreditsWallet(t *testing.T) {
	balances := map[string]int64{}
	var entries []store.LedgerEntryInput
	var statuses []string
	hub := &stubHub{}
	service := newTradeService(stubCardStore{}, stubTradeStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.TradeForReview, error) {
			return store.TradeForReview{ID: "trade-1", UserID: "user-1", PayoutMinor: 7500000, Status: "pending"}, nil
		},
		setStatusFn: func(_ context.Context, _ store.Execer, _, status, _ string, _ *string) error {
			statuses = append(statuses, status)
			return nil
		},
	}, stubEvidenceStore{}, stubWalletStore{
		getUserForUpdateFn: func(context.Context, store.Getter, string) (store.Wallet, error) {
			return store.Wallet{ID: "wallet-1", UserID: stringPtr("user-1"), Currency: "NGN", Balance: 100000}, nil
		},
		getForUpdateFn: func(_ context.Context, _ store.Getter, walletID string) (store.Wallet, error) {
			return store.Wallet{ID: walletID, Currency: "NGN", Balance: 10000000000, IsSystem: true, Purpose: "trading"}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, walletID string, balance int64) error {
			balances[walletID] = balance
			return nil
		},
	}, stubLedgerStore{
		insertFn: func(_ context.Context, _ store.Execer, inserted []store.LedgerEntryInput) error {
			entries = inserted
			return nil
		},
	}, hub)

	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "trade-1", Approve: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balances["wallet-1"] != 7600000 {
		t.Fatalf("unexpected user balance: %d", balances["wallet-1"])
	}
	if balances["sys-trading"] != 10000000000-7500000 {
		t.Fatalf("unexpected float balance: %d", balances["sys-trading"])
	}
	if len(statuses) != 1 || statuses[0] != "approved" {
		t.Fatalf("unexpected statuses: %v", statuses)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	var sum int64
	for _, entry := range entries {
		sum += entry.Amount
	}
	if sum != 0 {
		t.Fatalf("ledger entries not balanced: %d", sum)
	}
	types := hub.eventTypes()
	if len(types) != 3 || types[0] != websocket.EventTrade || types[1] != websocket.EventBalance || types[2] != websocket.EventNotification {
		t.Fatalf("unexpected events: %v", types)
	}
}

func TestReviewTradeFloatExhausted(t *testing.T) {
	service := newTradeService(stubCardStore{}, stubTradeStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.TradeForReview, error) {
			return store.TradeForReview{ID: "trade-1", UserID: "user-1", PayoutMinor: 7500000, Status: "pending"}, nil
		},
	}, stubEvidenceStore{}, stubWalletStore{
		getUserForUpdateFn: func(context.Context, store.Getter, string) (store.Wallet, error) {
			return store.Wallet{ID: "wallet-1", UserID: stringPtr("user-1"), Currency: "NGN", Balance: 0}, nil
		},
		getForUpdateFn: func(_ context.Context, _ store.Getter, walletID string) (store.Wallet, error) {
			return store.Wallet{ID: walletID, Currency: "NGN", Balance: 5000, IsSystem: true, Purpose: "trading"}, nil
		},
		updateBalanceFn: func(context.Context, store.Execer, string, int64) error {
			t.Fatalf("unexpected balance update")
			return nil
		},
	}, stubLedgerStore{}, &stubHub{})

	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "trade-1", Approve: true,
	})
	if err != ErrFloatExhausted {
		t.Fatalf("expected ErrFloatExhausted, got %v", err)
	}
}

func TestReviewTradeReject(t *testing.T) {
	var status string
	var storedReason *string
	notified := false
	hub := &stubHub{}
	service := NewTradeService(fakeTxRunner{}, stubCardStore{}, stubTradeStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.TradeForReview, error) {
			return store.TradeForReview{ID: "trade-1", UserID: "user-1", PayoutMinor: 7500000, Status: "pending"}, nil
		},
		setStatusFn: func(_ context.Context, _ store.Execer, _, s, _ string, reason *string) error {
			status = s
			storedReason = reason
			return nil
		},
	}, stubEvidenceStore{}, stubWalletStore{
		getUserForUpdateFn: func(context.Context, store.Getter, string) (store.Wallet, error) {
			t.Fatalf("rejection must not touch wallets")
			return store.Wallet{}, nil
		},
	}, stubLedgerStore{}, stubNotificationStore{
		insertFn: func(context.Context, store.Execer, string, string, string, string) error {
			notified = true
			return nil
		},
	}, stubAuditStore{}, hub)

	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "trade-1", Approve: false, Reason: "blurry receipt",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "rejected" || storedReason == nil || *storedReason != "blurry receipt" {
		t.Fatalf("unexpected status %q reason %v", status, storedReason)
	}
	if !notified {
		t.Fatalf("expected a notification insert")
	}
	types := hub.eventTypes()
	if len(types) != 2 || types[0] != websocket.EventTrade || types[1] != websocket.EventNotification {
		t.Fatalf("unexpected events: %v", types)
	}
}

func TestReviewTradeTxFailureSkipsEvents(t *testing.T) {
	hub := &stubHub{}
	service := NewTradeService(fakeTxRunner{err: errors.New("serialization failure")}, stubCardStore{}, stubTradeStore{}, stubEvidenceStore{}, stubWalletStore{}, stubLedgerStore{}, stubNotificationStore{}, stubAuditStore{}, hub)
	err := service.Review(context.Background(), ReviewTradeRequest{
		AgentID: "agent-1", TradeID: "trade-1", Approve: true,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(hub.events) != 0 {
		t.Fatalf("expected no events after a failed transaction")
	}
}
