package store

import (
	"context"

	"giftswap/internal/models"
)

type BankAccountStore struct {
	db DB
}

func NewBankAccountStore(db DB) *BankAccountStore {
	return &BankAccountStore{db: db}
}

func (s *BankAccountStore) Create(ctx context.Context, tx Execer, id, userID, bankName, accountNumber, holderName string) error {
	query := `
		INSERT INTO bank_accounts (id, user_id, bank_name, account_number, holder_name, visible)
		VALUES ($1, $2, $3, $4, $5, TRUE)
	`
	_, err := tx.ExecContext(ctx, query, id, userID, bankName, accountNumber, holderName)
	return err
}

func (s *BankAccountStore) ListVisible(ctx context.Context, userID string) ([]models.BankAccount, error) {
	var rows []models.BankAccount
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, bank_name, account_number, holder_name, visible, created_at
		FROM bank_accounts
		WHERE user_id = $1 AND visible = TRUE
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BankAccountStore) GetByID(ctx context.Context, accountID string) (models.BankAccount, error) {
	var row models.BankAccount
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, bank_name, account_number, holder_name, visible, created_at
		FROM bank_accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.BankAccount{}, err
	}
	return row, nil
}

// Hide soft-deletes: the row stays for audit and for withdrawals that
// reference it, but drops out of selection lists.
func (s *BankAccountStore) Hide(ctx context.Context, tx Execer, accountID, userID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE bank_accounts
		SET visible = FALSE
		WHERE id = $1 AND user_id = $2
	`, accountID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
