package store

import "context"

type WalletStore struct {
	db DB
}

type Wallet struct {
	ID        string  `db:"id"`
	UserID    *string `db:"user_id"`
	Currency  string  `db:"currency"`
	Balance   int64   `db:"balance"`
	IsSystem  bool    `db:"is_system"`
	Purpose   string  `db:"purpose"`
	CreatedAt any     `db:"created_at"`
}

// WalletBalanceSummary carries both the stored balance and the ledger-derived
// balance so clients and reconciliation jobs can spot drift.
type WalletBalanceSummary struct {
	ID                string  `db:"id"`
	UserID            *string `db:"user_id"`
	Currency          string  `db:"currency"`
	StoredBalance     int64   `db:"stored_balance"`
	CalculatedBalance int64   `db:"calculated_balance"`
	Difference        int64   `db:"difference"`
	CreatedAt         any     `db:"created_at"`
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

func (s *WalletStore) Create(ctx context.Context, tx Execer, id string, userID *string, currency string, isSystem bool, purpose string) error {
	query := `
		INSERT INTO wallets (id, user_id, currency, balance, is_system, purpose)
		VALUES ($1, $2, $3, 0, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, id, userID, currency, isSystem, purpose)
	return err
}

func (s *WalletStore) GetByUser(ctx context.Context, userID string) (WalletBalanceSummary, error) {
	var row WalletBalanceSummary
	err := s.db.GetContext(ctx, &row, `
		SELECT w.id,
		       w.user_id,
		       w.currency,
		       w.balance AS stored_balance,
		       COALESCE(SUM(l.amount), 0) AS calculated_balance,
		       (w.balance - COALESCE(SUM(l.amount), 0)) AS difference,
		       w.created_at
		FROM wallets w
		LEFT JOIN ledger_entries l ON l.wallet_id = w.id
		WHERE w.user_id = $1
		GROUP BY w.id, w.user_id, w.currency, w.balance, w.created_at
	`, userID)
	if err != nil {
		return WalletBalanceSummary{}, err
	}
	return row, nil
}

func (s *WalletStore) GetByID(ctx context.Context, walletID string) (Wallet, error) {
	var row Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, currency, balance, is_system, purpose, created_at
		FROM wallets
		WHERE id = $1
	`, walletID)
	if err != nil {
		return Wallet{}, err
	}
	return row, nil
}

func (s *WalletStore) GetUserWalletForUpdate(ctx context.Context, tx Getter, userID string) (Wallet, error) {
	var row Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, currency, balance, is_system, purpose
		FROM wallets
		WHERE user_id = $1 AND is_system = FALSE
		FOR UPDATE
	`, userID)
	if err != nil {
		return Wallet{}, err
	}
	return row, nil
}

func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, walletID string) (Wallet, error) {
	var row Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, currency, balance, is_system, purpose
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`, walletID)
	if err != nil {
		return Wallet{}, err
	}
	return row, nil
}

func (s *WalletStore) UpdateBalance(ctx context.Context, tx Execer, walletID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, walletID)
	return err
}

// GetSystemWallet finds the shared wallet for a purpose: "trading" funds trade
// payouts, "payout" holds withdrawn money awaiting bank transfer.
func (s *WalletStore) GetSystemWallet(ctx context.Context, purpose string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `
		SELECT id
		FROM wallets
		WHERE is_system = TRUE AND purpose = $1
	`, purpose)
	return id, err
}
