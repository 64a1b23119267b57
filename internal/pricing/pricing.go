package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
)

// Breakdown is the computed price summary for a cart state. It is
// recomputed whole, never incrementally patched.
//
// Invariants: Total = max(0, Subtotal-Discount) + Tax + Tip and
// Tax = max(0, Subtotal-Discount) * taxRate. Discount is capped by
// Subtotal. All amounts are rounded to 2 decimal places.
type Breakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal
}

// UnitPrice resolves the price of a single unit of a line item:
// product base price, plus the selected variant's delta (0 when the
// product has no variants), plus the deltas of selected add-ons that
// still exist on the product. An add-on id not found on the product
// contributes 0, which keeps stale selections harmless after a catalog
// change.
func UnitPrice(item cart.LineItem) decimal.Decimal {
	price := decimal.NewFromFloat(item.Product.BasePrice)

	if v, ok := item.Product.VariantByID(item.VariantID); ok {
		price = price.Add(decimal.NewFromFloat(v.PriceDelta))
	}

	for _, id := range item.AddOnIDs {
		if a, ok := item.Product.AddOnByID(id); ok {
			price = price.Add(decimal.NewFromFloat(a.PriceDelta))
		}
	}

	return price.Round(2)
}

// LineTotal is the unit price times the quantity, rounded to cents.
func LineTotal(item cart.LineItem) decimal.Decimal {
	return UnitPrice(item).Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
}

// Compute produces the breakdown for the given cart contents, resolved
// coupon discount, tax rate and flat tip amount. It is pure: identical
// inputs always yield identical results, and the subtotal accumulates
// in cart order for reproducibility.
func Compute(items []cart.LineItem, discount decimal.Decimal, taxRate decimal.Decimal, tip decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item))
	}
	subtotal = subtotal.Round(2)

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	// Clamp so the discounted base never goes negative before tax.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	discount = discount.Round(2)

	if tip.IsNegative() {
		tip = decimal.Zero
	}
	tip = tip.Round(2)

	base := subtotal.Sub(discount)
	tax := base.Mul(taxRate).Round(2)
	total := base.Add(tax).Add(tip).Round(2)

	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Tip:      tip,
		Total:    total,
	}
}
