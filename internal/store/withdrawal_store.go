package store

import "context"

type WithdrawalStore struct {
	db DB
}

func NewWithdrawalStore(db DB) *WithdrawalStore {
	return &WithdrawalStore{db: db}
}

type withdrawalRow struct {
	ID            string  `db:"id"`
	UserID        string  `db:"user_id"`
	Username      *string `db:"username"`
	BankAccountID string  `db:"bank_account_id"`
	BankName      *string `db:"bank_name"`
	AccountNumber *string `db:"account_number"`
	HolderName    *string `db:"holder_name"`
	AmountMinor   int64   `db:"amount_minor"`
	Status        string  `db:"status"`
	ReviewerID    *string `db:"reviewer_id"`
	ReviewReason  *string `db:"review_reason"`
	ReviewedAt    any     `db:"reviewed_at"`
	CreatedAt     any     `db:"created_at"`
}

type WithdrawalInput struct {
	ID            string
	UserID        string
	BankAccountID string
	AmountMinor   int64
}

func (s *WithdrawalStore) Create(ctx context.Context, tx Execer, input WithdrawalInput) error {
	query := `
		INSERT INTO withdrawals (id, user_id, bank_account_id, amount_minor, status)
		VALUES ($1, $2, $3, $4, 'pending')
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.UserID, input.BankAccountID, input.AmountMinor)
	return err
}

type WithdrawalForReview struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	AmountMinor int64  `db:"amount_minor"`
	Status      string `db:"status"`
}

func (s *WithdrawalStore) GetForUpdate(ctx context.Context, tx Getter, withdrawalID string) (WithdrawalForReview, error) {
	var row WithdrawalForReview
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, amount_minor, status
		FROM withdrawals
		WHERE id = $1
		FOR UPDATE
	`, withdrawalID)
	if err != nil {
		return WithdrawalForReview{}, err
	}
	return row, nil
}

func (s *WithdrawalStore) SetStatus(ctx context.Context, tx Execer, withdrawalID, status, reviewerID string, reason *string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $1, reviewer_id = $2, review_reason = $3, reviewed_at = NOW()
		WHERE id = $4
	`, status, reviewerID, reason, withdrawalID)
	return err
}

func (s *WithdrawalStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error) {
	var rows []withdrawalRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT wd.id, wd.user_id, u.username, wd.bank_account_id,
		       b.bank_name, b.account_number, b.holder_name,
		       wd.amount_minor, wd.status, wd.reviewer_id, wd.review_reason, wd.reviewed_at, wd.created_at
		FROM withdrawals wd
		LEFT JOIN users u ON u.id = wd.user_id
		LEFT JOIN bank_accounts b ON b.id = wd.bank_account_id
		WHERE wd.user_id = $1
		ORDER BY wd.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return withdrawalRowsToMaps(rows), nil
}

func (s *WithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]map[string]any, error) {
	var rows []withdrawalRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT wd.id, wd.user_id, u.username, wd.bank_account_id,
		       b.bank_name, b.account_number, b.holder_name,
		       wd.amount_minor, wd.status, wd.reviewer_id, wd.review_reason, wd.reviewed_at, wd.created_at
		FROM withdrawals wd
		LEFT JOIN users u ON u.id = wd.user_id
		LEFT JOIN bank_accounts b ON b.id = wd.bank_account_id
		WHERE wd.status = $1
		ORDER BY wd.created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return withdrawalRowsToMaps(rows), nil
}

func withdrawalRowsToMaps(rows []withdrawalRow) []map[string]any {
	maps := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		maps = append(maps, map[string]any{
			"id":              row.ID,
			"user_id":         row.UserID,
			"username":        derefStringPtr(row.Username),
			"bank_account_id": row.BankAccountID,
			"bank_name":       derefStringPtr(row.BankName),
			"account_number":  derefStringPtr(row.AccountNumber),
			"holder_name":     derefStringPtr(row.HolderName),
			"amount_minor":    row.AmountMinor,
			"status":          row.Status,
			"reviewer_id":     derefStringPtr(row.ReviewerID),
			"review_reason":   derefStringPtr(row.ReviewReason),
			"reviewed_at":     row.ReviewedAt,
			"created_at":      row.CreatedAt,
		})
	}
	return maps
}
