package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
)

// PostgresPersistence stores one serialized cart snapshot per session
// key. Saves are full-row upserts, so a write is atomic per key and a
// reader can never observe a half-written sequence.
type PostgresPersistence struct {
	db *sqlx.DB
}

func NewPostgresPersistence(db *sqlx.DB) *PostgresPersistence {
	return &PostgresPersistence{db: db}
}

func (p *PostgresPersistence) Load(ctx context.Context, key string) ([]cart.LineItem, error) {
	var payload []byte
	err := p.db.GetContext(ctx, &payload,
		`SELECT payload FROM cart_snapshots WHERE session_key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cart.ErrNoStoredCart
		}
		return nil, fmt.Errorf("storage: failed to load cart snapshot for key %s: %w", key, err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal cart snapshot for key %s: %w", key, err)
	}

	return items, nil
}

func (p *PostgresPersistence) Save(ctx context.Context, key string, items []cart.LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal cart snapshot for key %s: %w", key, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (session_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_key) DO UPDATE SET payload = $2, updated_at = $3
	`, key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: failed to save cart snapshot for key %s: %w", key, err)
	}

	return nil
}
