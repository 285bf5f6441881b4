package handlers

import (
	"context"
	"io"
	"strings"
	"time"

	"giftswap/internal/config"
	"giftswap/internal/db"
	"giftswap/internal/models"
	"giftswap/internal/services"
	"giftswap/internal/store"
	"giftswap/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (map[string]any, error)
	getByIDFn    func(ctx context.Context, userID string) (map[string]any, error)
	listAllFn    func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (map[string]any, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (map[string]any, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) ListAll(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubCardStore struct {
	listFn    func(ctx context.Context) ([]models.GiftCard, error)
	getByIDFn func(ctx context.Context, cardID string) (models.GiftCard, error)
	upsertFn  func(ctx context.Context, tx store.Execer, input store.CardInput) error
}

func (s stubCardStore) List(ctx context.Context) ([]models.GiftCard, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubCardStore) GetByID(ctx context.Context, cardID string) (models.GiftCard, error) {
	if s.getByIDFn == nil {
		return models.GiftCard{}, nil
	}
	return s.getByIDFn(ctx, cardID)
}

func (s stubCardStore) Upsert(ctx context.Context, tx store.Execer, input store.CardInput) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, input)
}

type stubTradeStore struct {
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error)
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]map[string]any, error)
	getByIDFn      func(ctx context.Context, tradeID string) (map[string]any, error)
}

func (s stubTradeStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubTradeStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]map[string]any, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

func (s stubTradeStore) GetByID(ctx context.Context, tradeID string) (map[string]any, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, tradeID)
}

type stubEvidenceStore struct {
	registerFn    func(ctx context.Context, id, userID, path, url string) error
	listByTradeFn func(ctx context.Context, tradeID string) ([]models.EvidenceUpload, error)
}

func (s stubEvidenceStore) Register(ctx context.Context, id, userID, path, url string) error {
	if s.registerFn == nil {
		return nil
	}
	return s.registerFn(ctx, id, userID, path, url)
}

func (s stubEvidenceStore) ListByTrade(ctx context.Context, tradeID string) ([]models.EvidenceUpload, error) {
	if s.listByTradeFn == nil {
		return nil, nil
	}
	return s.listByTradeFn(ctx, tradeID)
}

type stubWalletStore struct {
	createFn    func(ctx context.Context, tx store.Execer, id string, userID *string, currency string, isSystem bool, purpose string) error
	getByUserFn func(ctx context.Context, userID string) (store.WalletBalanceSummary, error)
}

func (s stubWalletStore) Create(ctx context.Context, tx store.Execer, id string, userID *string, currency string, isSystem bool, purpose string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, currency, isSystem, purpose)
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (store.WalletBalanceSummary, error) {
	if s.getByUserFn == nil {
		return store.WalletBalanceSummary{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

type stubLedgerStore struct {
	listByWalletFn func(ctx context.Context, walletID string, limit, offset int) ([]map[string]any, error)
}

func (s stubLedgerStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]map[string]any, error) {
	if s.listByWalletFn == nil {
		return nil, nil
	}
	return s.listByWalletFn(ctx, walletID, limit, offset)
}

type stubWithdrawalStore struct {
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error)
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]map[string]any, error)
}

func (s stubWithdrawalStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubWithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]map[string]any, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubBankAccountStore struct {
	createFn      func(ctx context.Context, tx store.Execer, id, userID, bankName, accountNumber, holderName string) error
	listVisibleFn func(ctx context.Context, userID string) ([]models.BankAccount, error)
	hideFn        func(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error)
}

func (s stubBankAccountStore) Create(ctx context.Context, tx store.Execer, id, userID, bankName, accountNumber, holderName string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, bankName, accountNumber, holderName)
}

func (s stubBankAccountStore) ListVisible(ctx context.Context, userID string) ([]models.BankAccount, error) {
	if s.listVisibleFn == nil {
		return nil, nil
	}
	return s.listVisibleFn(ctx, userID)
}

func (s stubBankAccountStore) Hide(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error) {
	if s.hideFn == nil {
		return 1, nil
	}
	return s.hideFn(ctx, tx, accountID, userID)
}

type stubNotificationStore struct {
	listByUserFn  func(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	markReadFn    func(ctx context.Context, notificationID, userID string) (int64, error)
	unreadCountFn func(ctx context.Context, userID string) (int, error)
}

func (s stubNotificationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubNotificationStore) MarkRead(ctx context.Context, notificationID, userID string) (int64, error) {
	if s.markReadFn == nil {
		return 1, nil
	}
	return s.markReadFn(ctx, notificationID, userID)
}

func (s stubNotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.unreadCountFn == nil {
		return 0, nil
	}
	return s.unreadCountFn(ctx, userID)
}

type stubMessageStore struct {
	insertFn      func(ctx context.Context, id, userID, sender string, agentID *string, body string) error
	listByUserFn  func(ctx context.Context, userID string, limit, offset int) ([]models.SupportMessage, error)
	listThreadsFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubMessageStore) Insert(ctx context.Context, id, userID, sender string, agentID *string, body string) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, id, userID, sender, agentID, body)
}

func (s stubMessageStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SupportMessage, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubMessageStore) ListThreads(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listThreadsFn == nil {
		return nil, nil
	}
	return s.listThreadsFn(ctx, limit, offset)
}

type stubAgentStore struct {
	isAgentFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAgentFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, agentUserID, role string) error
	hasAnyAgentFn func(ctx context.Context) (bool, error)
}

func (s stubAgentStore) IsAgent(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAgentFn == nil {
		return false, false, nil
	}
	return s.isAgentFn(ctx, userID)
}

func (s stubAgentStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAgentStore) CreateAgent(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAgentFn == nil {
		return nil
	}
	return s.createAgentFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAgentStore) GrantRole(ctx context.Context, tx store.Execer, agentUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, agentUserID, role)
}

func (s stubAgentStore) HasAnyAgent(ctx context.Context) (bool, error) {
	if s.hasAnyAgentFn == nil {
		return true, nil
	}
	return s.hasAnyAgentFn(ctx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubTradeService struct {
	submitFn func(ctx context.Context, req services.SubmitTradeRequest) (string, error)
	reviewFn func(ctx context.Context, req services.ReviewTradeRequest) error
}

func (s stubTradeService) Submit(ctx context.Context, req services.SubmitTradeRequest) (string, error) {
	if s.submitFn == nil {
		return "", nil
	}
	return s.submitFn(ctx, req)
}

func (s stubTradeService) Review(ctx context.Context, req services.ReviewTradeRequest) error {
	if s.reviewFn == nil {
		return nil
	}
	return s.reviewFn(ctx, req)
}

type stubWithdrawalService struct {
	submitFn func(ctx context.Context, req services.SubmitWithdrawalRequest) (string, error)
	reviewFn func(ctx context.Context, req services.ReviewWithdrawalRequest) error
}

func (s stubWithdrawalService) Submit(ctx context.Context, req services.SubmitWithdrawalRequest) (string, error) {
	if s.submitFn == nil {
		return "", nil
	}
	return s.submitFn(ctx, req)
}

func (s stubWithdrawalService) Review(ctx context.Context, req services.ReviewWithdrawalRequest) error {
	if s.reviewFn == nil {
		return nil
	}
	return s.reviewFn(ctx, req)
}

type stubBlobStore struct {
	saveFn func(userID, uploadID, filename string, r io.Reader) (string, string, error)
}

func (s stubBlobStore) Save(userID, uploadID, filename string, r io.Reader) (string, string, error) {
	if s.saveFn == nil {
		return userID + "/" + uploadID, "http://localhost/uploads/" + userID + "/" + uploadID, nil
	}
	return s.saveFn(userID, uploadID, filename, r)
}

func (s stubBlobStore) Open(path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type testDeps struct {
	txRunner      db.TxRunner
	users         UserStore
	cards         CardStore
	trades        TradeStore
	evidence      EvidenceStore
	wallets       WalletStore
	ledger        LedgerStore
	withdrawals   WithdrawalStore
	bankAccounts  BankAccountStore
	notifications NotificationStore
	messages      MessageStore
	agents        AgentStore
	audit         AuditStore
	tradeService  TradeService
	payoutService WithdrawalService
}

func newTestHandler(deps testDeps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	if deps.txRunner == nil {
		deps.txRunner = fakeTxRunner{}
	}
	if deps.users == nil {
		deps.users = stubUserStore{}
	}
	if deps.cards == nil {
		deps.cards = stubCardStore{}
	}
	if deps.trades == nil {
		deps.trades = stubTradeStore{}
	}
	if deps.evidence == nil {
		deps.evidence = stubEvidenceStore{}
	}
	if deps.wallets == nil {
		deps.wallets = stubWalletStore{}
	}
	if deps.ledger == nil {
		deps.ledger = stubLedgerStore{}
	}
	if deps.withdrawals == nil {
		deps.withdrawals = stubWithdrawalStore{}
	}
	if deps.bankAccounts == nil {
		deps.bankAccounts = stubBankAccountStore{}
	}
	if deps.notifications == nil {
		deps.notifications = stubNotificationStore{}
	}
	if deps.messages == nil {
		deps.messages = stubMessageStore{}
	}
	if deps.agents == nil {
		deps.agents = stubAgentStore{}
	}
	if deps.audit == nil {
		deps.audit = stubAuditStore{}
	}
	if deps.tradeService == nil {
		deps.tradeService = stubTradeService{}
	}
	if deps.payoutService == nil {
		deps.payoutService = stubWithdrawalService{}
	}
	return New(deps.txRunner, cfg, deps.users, deps.cards, deps.trades, deps.evidence, deps.wallets, deps.ledger, deps.withdrawals, deps.bankAccounts, deps.notifications, deps.messages, deps.agents, deps.audit, deps.tradeService, deps.payoutService, stubBlobStore{}, websocket.NewHub())
}

func stringPtr(value string) *string {
	return &value
}
