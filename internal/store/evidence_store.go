package store

import (
	"context"

	"github.com/lib/pq"

	"giftswap/internal/models"
)

type EvidenceStore struct {
	db DB
}

func NewEvidenceStore(db DB) *EvidenceStore {
	return &EvidenceStore{db: db}
}

func (s *EvidenceStore) Register(ctx context.Context, id, userID, path, url string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evidence_uploads (id, user_id, path, url)
		VALUES ($1, $2, $3, $4)
	`, id, userID, path, url)
	return err
}

// Claim attaches uploads to a trade inside the submission transaction. Only
// unclaimed uploads owned by the submitting user qualify; the returned count
// lets the caller detect stale or foreign upload ids.
func (s *EvidenceStore) Claim(ctx context.Context, tx Execer, tradeID, userID string, uploadIDs []string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE evidence_uploads
		SET trade_id = $1
		WHERE user_id = $2 AND trade_id IS NULL AND id = ANY($3)
	`, tradeID, userID, pq.Array(uploadIDs))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *EvidenceStore) ListByTrade(ctx context.Context, tradeID string) ([]models.EvidenceUpload, error) {
	var rows []models.EvidenceUpload
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, path, url, trade_id, created_at
		FROM evidence_uploads
		WHERE trade_id = $1
		ORDER BY created_at
	`, tradeID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
