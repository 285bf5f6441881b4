package store

import (
	"context"

	"giftswap/internal/models"
)

type CardStore struct {
	db DB
}

func NewCardStore(db DB) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) List(ctx context.Context) ([]models.GiftCard, error) {
	var rows []models.GiftCard
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, image_url, physical_rate, electronic_rate, created_at, updated_at
		FROM gift_cards
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CardStore) GetByID(ctx context.Context, cardID string) (models.GiftCard, error) {
	var row models.GiftCard
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, image_url, physical_rate, electronic_rate, created_at, updated_at
		FROM gift_cards
		WHERE id = $1
	`, cardID)
	if err != nil {
		return models.GiftCard{}, err
	}
	return row, nil
}

type CardInput struct {
	ID             string
	Name           string
	ImageURL       *string
	PhysicalRate   *string
	ElectronicRate *string
}

// Upsert inserts a catalog entry or refreshes an existing one by id. Catalog
// changes never touch already-submitted trades, which carry their own rate
// snapshot.
func (s *CardStore) Upsert(ctx context.Context, tx Execer, input CardInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO gift_cards (id, name, image_url, physical_rate, electronic_rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    image_url = EXCLUDED.image_url,
		    physical_rate = EXCLUDED.physical_rate,
		    electronic_rate = EXCLUDED.electronic_rate,
		    updated_at = NOW()
	`, input.ID, input.Name, input.ImageURL, input.PhysicalRate, input.ElectronicRate)
	return err
}
