package checkout

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/pricing"
)

// Session ties one cart store to its price breakdown. The breakdown is
// recomputed whole on exactly three triggers: cart mutation (via the
// store subscription), coupon result arrival, and tip change. When
// triggers race, the displayed breakdown is last-write-wins by
// completion order.
//
// Coupon policy: a previously fetched discount stays applied at its
// absolute amount across cart edits until the user re-applies a code.
// Mutations never re-validate the code against the new subtotal.
type Session struct {
	store     *cart.Store
	validator *coupon.Validator
	taxRate   decimal.Decimal

	mu        sync.Mutex
	coupon    coupon.Result
	tip       decimal.Decimal
	breakdown pricing.Breakdown
}

func NewSession(store *cart.Store, validator *coupon.Validator, taxRate decimal.Decimal) *Session {
	s := &Session{
		store:     store,
		validator: validator,
		taxRate:   taxRate,
	}
	store.Subscribe(s.recompute)
	s.recompute()
	return s
}

// Store exposes the session's cart store to the submission path.
func (s *Session) Store() *cart.Store {
	return s.store
}

// ApplyCoupon validates a code against the current subtotal and holds
// the outcome for subsequent recomputations. Validation failures
// degrade to no discount; no error reaches the caller.
func (s *Session) ApplyCoupon(ctx context.Context, code string) coupon.Result {
	subtotal := pricing.Compute(s.store.Items(), decimal.Zero, decimal.Zero, decimal.Zero).Subtotal

	result := s.validator.Validate(ctx, code, subtotal)

	s.mu.Lock()
	s.coupon = result
	s.mu.Unlock()

	s.recompute()
	return result
}

// ClearCoupon drops any applied discount, e.g. after order placement.
func (s *Session) ClearCoupon() {
	s.mu.Lock()
	s.coupon = coupon.NoDiscount()
	s.mu.Unlock()

	s.recompute()
}

// SetTip records the user-chosen flat tip amount.
func (s *Session) SetTip(tip decimal.Decimal) {
	if tip.IsNegative() {
		tip = decimal.Zero
	}

	s.mu.Lock()
	s.tip = tip
	s.mu.Unlock()

	s.recompute()
}

// Coupon reports the currently held coupon outcome.
func (s *Session) Coupon() coupon.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon
}

// Tip reports the current tip amount.
func (s *Session) Tip() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tip
}

// Breakdown returns the latest computed breakdown.
func (s *Session) Breakdown() pricing.Breakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakdown
}

func (s *Session) recompute() {
	items := s.store.Items()

	s.mu.Lock()
	s.breakdown = pricing.Compute(items, s.coupon.Discount, s.taxRate, s.tip)
	s.mu.Unlock()
}
