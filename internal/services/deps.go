package services

import (
	"context"

	"giftswap/internal/models"
	"giftswap/internal/store"
	"giftswap/internal/websocket"
)

type CardStore interface {
	GetByID(ctx context.Context, cardID string) (models.GiftCard, error)
}

type TradeStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TradeInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, tradeID string) (store.TradeForReview, error)
	SetStatus(ctx context.Context, tx store.Execer, tradeID, status, reviewerID string, reason *string) error
}

type EvidenceStore interface {
	Claim(ctx context.Context, tx store.Execer, tradeID, userID string, uploadIDs []string) (int64, error)
}

type WalletStore interface {
	GetUserWalletForUpdate(ctx context.Context, tx store.Getter, userID string) (store.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, walletID string) (store.Wallet, error)
	UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance int64) error
	GetSystemWallet(ctx context.Context, purpose string) (string, error)
}

type LedgerStore interface {
	InsertEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error
}

type WithdrawalStore interface {
	Create(ctx context.Context, tx store.Execer, input store.WithdrawalInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, withdrawalID string) (store.WithdrawalForReview, error)
	SetStatus(ctx context.Context, tx store.Execer, withdrawalID, status, reviewerID string, reason *string) error
}

type BankAccountStore interface {
	GetByID(ctx context.Context, accountID string) (models.BankAccount, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, tx store.Execer, id, userID, title, body string) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type EventHub interface {
	BroadcastEvent(userID string, event websocket.Event)
}
