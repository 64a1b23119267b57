package checkout

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/coupon"
)

// Manager keeps one checkout session per storefront session key,
// constructing the cart store (restored from persistence) on first
// access. Sessions are never shared across keys.
type Manager struct {
	persist   cart.Persistence
	validator *coupon.Validator
	taxRate   decimal.Decimal

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(persist cart.Persistence, validator *coupon.Validator, taxRate decimal.Decimal) *Manager {
	return &Manager{
		persist:   persist,
		validator: validator,
		taxRate:   taxRate,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the checkout session for the given key, restoring or
// creating its cart as needed.
func (m *Manager) Session(ctx context.Context, key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s
	}

	store := cart.NewStore(ctx, key, m.persist)
	s := NewSession(store, m.validator, m.taxRate)
	m.sessions[key] = s
	return s
}

// Close stops the background savers of all live sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		s.Store().Close()
	}
	m.sessions = make(map[string]*Session)
}
