package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
)

// RedisPersistence stores one serialized cart per session key. SET is
// atomic per key, so writes cannot interleave. No TTL: the cart must
// survive reloads for the lifetime of the session key.
type RedisPersistence struct {
	client *redis.Client
}

func NewRedisPersistence(client *redis.Client) *RedisPersistence {
	return &RedisPersistence{client: client}
}

func (r *RedisPersistence) Load(ctx context.Context, key string) ([]cart.LineItem, error) {
	data, err := r.client.Get(ctx, cartKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoStoredCart
	}
	if err != nil {
		return nil, fmt.Errorf("storage: redis get failed for key %s: %w", key, err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal cart for key %s: %w", key, err)
	}

	return items, nil
}

func (r *RedisPersistence) Save(ctx context.Context, key string, items []cart.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal cart for key %s: %w", key, err)
	}

	if err := r.client.Set(ctx, cartKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set failed for key %s: %w", key, err)
	}

	return nil
}

func cartKey(sessionKey string) string {
	return fmt.Sprintf("cart:%s", sessionKey)
}
