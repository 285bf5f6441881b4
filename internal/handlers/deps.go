package handlers

import (
	"context"

	"giftswap/internal/models"
	"giftswap/internal/services"
	"giftswap/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (map[string]any, error)
	GetByID(ctx context.Context, userID string) (map[string]any, error)
	ListAll(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type CardStore interface {
	List(ctx context.Context) ([]models.GiftCard, error)
	GetByID(ctx context.Context, cardID string) (models.GiftCard, error)
	Upsert(ctx context.Context, tx store.Execer, input store.CardInput) error
}

type TradeStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]map[string]any, error)
	GetByID(ctx context.Context, tradeID string) (map[string]any, error)
}

type EvidenceStore interface {
	Register(ctx context.Context, id, userID, path, url string) error
	ListByTrade(ctx context.Context, tradeID string) ([]models.EvidenceUpload, error)
}

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, id string, userID *string, currency string, isSystem bool, purpose string) error
	GetByUser(ctx context.Context, userID string) (store.WalletBalanceSummary, error)
}

type LedgerStore interface {
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]map[string]any, error)
}

type WithdrawalStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]map[string]any, error)
}

type BankAccountStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID, bankName, accountNumber, holderName string) error
	ListVisible(ctx context.Context, userID string) ([]models.BankAccount, error)
	Hide(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error)
}

type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type MessageStore interface {
	Insert(ctx context.Context, id, userID, sender string, agentID *string, body string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SupportMessage, error)
	ListThreads(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type AgentStore interface {
	IsAgent(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAgent(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, agentUserID, role string) error
	HasAnyAgent(ctx context.Context) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type TradeService interface {
	Submit(ctx context.Context, req services.SubmitTradeRequest) (string, error)
	Review(ctx context.Context, req services.ReviewTradeRequest) error
}

type WithdrawalService interface {
	Submit(ctx context.Context, req services.SubmitWithdrawalRequest) (string, error)
	Review(ctx context.Context, req services.ReviewWithdrawalRequest) error
}
