package store

import (
	"context"

	"giftswap/internal/models"
)

type MessageStore struct {
	db DB
}

func NewMessageStore(db DB) *MessageStore {
	return &MessageStore{db: db}
}

// Insert appends to the support thread of userID. Sender is "user" or
// "agent"; agentID is set only for agent replies.
func (s *MessageStore) Insert(ctx context.Context, id, userID, sender string, agentID *string, body string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO support_messages (id, user_id, sender, agent_id, body)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, sender, agentID, body)
	return err
}

func (s *MessageStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SupportMessage, error) {
	var rows []models.SupportMessage
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, sender, agent_id, body, created_at
		FROM support_messages
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type threadRow struct {
	UserID        string  `db:"user_id"`
	Username      *string `db:"username"`
	LastBody      string  `db:"last_body"`
	LastSender    string  `db:"last_sender"`
	LastCreatedAt any     `db:"last_created_at"`
}

// ListThreads gives agents one row per user thread, most recent first.
func (s *MessageStore) ListThreads(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	var rows []threadRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT ON (m.user_id)
		       m.user_id, u.username,
		       m.body AS last_body, m.sender AS last_sender, m.created_at AS last_created_at
		FROM support_messages m
		LEFT JOIN users u ON u.id = m.user_id
		ORDER BY m.user_id, m.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	threads := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		threads = append(threads, map[string]any{
			"user_id":         row.UserID,
			"username":        derefStringPtr(row.Username),
			"last_body":       row.LastBody,
			"last_sender":     row.LastSender,
			"last_created_at": row.LastCreatedAt,
		})
	}
	return threads, nil
}
