package store

import "context"

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LedgerEntryInput struct {
	ID          string
	ReferenceID string
	WalletID    string
	Amount      int64
	Currency    string
	Description string
}

func (s *LedgerStore) InsertEntries(ctx context.Context, tx Execer, entries []LedgerEntryInput) error {
	query := `
		INSERT INTO ledger_entries (id, reference_id, wallet_id, amount, currency, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, entry.ID, entry.ReferenceID, entry.WalletID, entry.Amount, entry.Currency, entry.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerStore) SumByWallet(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE wallet_id = $1
	`, walletID)
	return sum, err
}

type ledgerRow struct {
	ID          string `db:"id"`
	ReferenceID string `db:"reference_id"`
	Amount      int64  `db:"amount"`
	Currency    string `db:"currency"`
	Description string `db:"description"`
	CreatedAt   any    `db:"created_at"`
}

func (s *LedgerStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]map[string]any, error) {
	var rows []ledgerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, reference_id, amount, currency, description, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	entries := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, map[string]any{
			"id":           row.ID,
			"reference_id": row.ReferenceID,
			"amount":       row.Amount,
			"currency":     row.Currency,
			"description":  row.Description,
			"created_at":   row.CreatedAt,
		})
	}
	return entries, nil
}
