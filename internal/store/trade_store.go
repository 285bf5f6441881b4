package store

import "context"

type TradeStore struct {
	db DB
}

func NewTradeStore(db DB) *TradeStore {
	return &TradeStore{db: db}
}

type tradeRow struct {
	ID             string  `db:"id"`
	UserID         string  `db:"user_id"`
	Username       *string `db:"username"`
	CardID         string  `db:"card_id"`
	CardName       *string `db:"card_name"`
	Variant        string  `db:"variant"`
	FaceValueMinor int64   `db:"face_value_minor"`
	Rate           string  `db:"rate"`
	PayoutMinor    int64   `db:"payout_minor"`
	Code           *string `db:"code"`
	Status         string  `db:"status"`
	ReviewerID     *string `db:"reviewer_id"`
	ReviewReason   *string `db:"review_reason"`
	ReviewedAt     any     `db:"reviewed_at"`
	CreatedAt      any     `db:"created_at"`
}

type TradeInput struct {
	ID             string
	UserID         string
	CardID         string
	Variant        string
	FaceValueMinor int64
	Rate           string
	PayoutMinor    int64
	Code           *string
}

// Create inserts a trade with status forced to pending; only review
// transitions move it afterwards.
func (s *TradeStore) Create(ctx context.Context, tx Execer, input TradeInput) error {
	query := `
		INSERT INTO trades (id, user_id, card_id, variant, face_value_minor, rate, payout_minor, code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.CardID, input.Variant,
		input.FaceValueMinor, input.Rate, input.PayoutMinor, input.Code,
	)
	return err
}

type TradeForReview struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	CardID      string `db:"card_id"`
	Variant     string `db:"variant"`
	PayoutMinor int64  `db:"payout_minor"`
	Status      string `db:"status"`
}

func (s *TradeStore) GetForUpdate(ctx context.Context, tx Getter, tradeID string) (TradeForReview, error) {
	var row TradeForReview
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, card_id, variant, payout_minor, status
		FROM trades
		WHERE id = $1
		FOR UPDATE
	`, tradeID)
	if err != nil {
		return TradeForReview{}, err
	}
	return row, nil
}

func (s *TradeStore) SetStatus(ctx context.Context, tx Execer, tradeID, status, reviewerID string, reason *string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE trades
		SET status = $1, reviewer_id = $2, review_reason = $3, reviewed_at = NOW()
		WHERE id = $4
	`, status, reviewerID, reason, tradeID)
	return err
}

func (s *TradeStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error) {
	var rows []tradeRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.user_id, u.username, t.card_id, c.name AS card_name,
		       t.variant, t.face_value_minor, t.rate, t.payout_minor, t.code,
		       t.status, t.reviewer_id, t.review_reason, t.reviewed_at, t.created_at
		FROM trades t
		LEFT JOIN users u ON u.id = t.user_id
		LEFT JOIN gift_cards c ON c.id = t.card_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return tradeRowsToMaps(rows), nil
}

func (s *TradeStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]map[string]any, error) {
	var rows []tradeRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.user_id, u.username, t.card_id, c.name AS card_name,
		       t.variant, t.face_value_minor, t.rate, t.payout_minor, t.code,
		       t.status, t.reviewer_id, t.review_reason, t.reviewed_at, t.created_at
		FROM trades t
		LEFT JOIN users u ON u.id = t.user_id
		LEFT JOIN gift_cards c ON c.id = t.card_id
		WHERE t.status = $1
		ORDER BY t.created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return tradeRowsToMaps(rows), nil
}

func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (map[string]any, error) {
	var row tradeRow
	err := s.db.GetContext(ctx, &row, `
		SELECT t.id, t.user_id, u.username, t.card_id, c.name AS card_name,
		       t.variant, t.face_value_minor, t.rate, t.payout_minor, t.code,
		       t.status, t.reviewer_id, t.review_reason, t.reviewed_at, t.created_at
		FROM trades t
		LEFT JOIN users u ON u.id = t.user_id
		LEFT JOIN gift_cards c ON c.id = t.card_id
		WHERE t.id = $1
	`, tradeID)
	if err != nil {
		return nil, err
	}
	maps := tradeRowsToMaps([]tradeRow{row})
	return maps[0], nil
}

func tradeRowsToMaps(rows []tradeRow) []map[string]any {
	maps := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		maps = append(maps, map[string]any{
			"id":               row.ID,
			"user_id":          row.UserID,
			"username":         derefStringPtr(row.Username),
			"card_id":          row.CardID,
			"card_name":        derefStringPtr(row.CardName),
			"variant":          row.Variant,
			"face_value_minor": row.FaceValueMinor,
			"rate":             row.Rate,
			"payout_minor":     row.PayoutMinor,
			"code":             derefStringPtr(row.Code),
			"status":           row.Status,
			"reviewer_id":      derefStringPtr(row.ReviewerID),
			"review_reason":    derefStringPtr(row.ReviewReason),
			"reviewed_at":      row.ReviewedAt,
			"created_at":       row.CreatedAt,
		})
	}
	return maps
}
