package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrNoStoredCart is returned by Load when no cart has been persisted
// under the given key.
var ErrNoStoredCart = errors.New("cart: no stored cart")

// Persistence is the durable storage port for cart snapshots, keyed by
// session. Implementations must serialize writes per key so concurrent
// saves cannot interleave and corrupt the stored sequence.
type Persistence interface {
	Load(ctx context.Context, key string) ([]LineItem, error)
	Save(ctx context.Context, key string, items []LineItem) error
}

// MemoryPersistence keeps serialized carts in process memory. Useful
// for tests and single-instance deployments without external storage.
type MemoryPersistence struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{carts: make(map[string][]byte)}
}

func (m *MemoryPersistence) Load(ctx context.Context, key string) ([]LineItem, error) {
	m.mu.RLock()
	data, ok := m.carts[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNoStoredCart
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (m *MemoryPersistence) Save(ctx context.Context, key string, items []LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.carts[key] = data
	m.mu.Unlock()

	return nil
}
