package store

import (
	"context"
	"database/sql"
)

type AgentStore struct {
	db DB
}

func NewAgentStore(db DB) *AgentStore {
	return &AgentStore{db: db}
}

func (s *AgentStore) IsAgent(ctx context.Context, userID string) (bool, bool, error) {
	var isSuper bool
	err := s.db.GetContext(ctx, &isSuper, `
		SELECT is_super
		FROM agents
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, false, nil
		}
		return false, false, err
	}
	return true, isSuper, nil
}

func (s *AgentStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM agent_roles
		WHERE agent_user_id = $1 AND role = $2
	`, userID, role)
	return count > 0, err
}

func (s *AgentStore) CreateAgent(ctx context.Context, tx Execer, userID string, isSuper bool, createdBy *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO agents (user_id, is_super, created_by)
		VALUES ($1, $2, $3)
	`, userID, isSuper, createdBy)
	return err
}

func (s *AgentStore) GrantRole(ctx context.Context, tx Execer, agentUserID, role string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO agent_roles (agent_user_id, role)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, agentUserID, role)
	return err
}

func (s *AgentStore) HasAnyAgent(ctx context.Context) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM agents`)
	return count > 0, err
}
