package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/pricing"
)

func burgerItem(quantity int) cart.LineItem {
	return cart.LineItem{
		ProductID: "p1",
		VariantID: "v-large",
		AddOnIDs:  []string{"a-cheese", "a-bacon"},
		Quantity:  quantity,
		Product: catalog.Product{
			ID:        "p1",
			Name:      "Classic Burger",
			BasePrice: 8.00,
			Variants: []catalog.Variant{
				{ID: "v-regular", Name: "Regular", PriceDelta: 0},
				{ID: "v-large", Name: "Large", PriceDelta: 1.00},
			},
			AddOns: []catalog.AddOn{
				{ID: "a-cheese", Name: "Extra Cheese", PriceDelta: 0.50},
				{ID: "a-bacon", Name: "Bacon", PriceDelta: 0.75},
			},
		},
	}
}

func TestCompute(t *testing.T) {
	taxRate := decimal.NewFromFloat(0.08)
	tip := decimal.NewFromFloat(2.00)

	tests := []struct {
		name         string
		items        []cart.LineItem
		discount     float64
		wantSubtotal string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "no_discount",
			items:        []cart.LineItem{burgerItem(2)},
			discount:     0,
			wantSubtotal: "20.50",
			wantDiscount: "0.00",
			wantTax:      "1.64",
			wantTotal:    "24.14",
		},
		{
			name:         "flat_discount",
			items:        []cart.LineItem{burgerItem(2)},
			discount:     5.00,
			wantSubtotal: "20.50",
			wantDiscount: "5.00",
			wantTax:      "1.24",
			wantTotal:    "18.74",
		},
		{
			name:         "discount_exceeds_subtotal_is_clamped",
			items:        []cart.LineItem{burgerItem(2)},
			discount:     25.00,
			wantSubtotal: "20.50",
			wantDiscount: "20.50",
			wantTax:      "0.00",
			wantTotal:    "2.00", // tip only
		},
		{
			name:         "empty_cart",
			items:        nil,
			discount:     0,
			wantSubtotal: "0.00",
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantTotal:    "2.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pricing.Compute(tt.items, decimal.NewFromFloat(tt.discount), taxRate, tip)

			assert.Equal(t, tt.wantSubtotal, b.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, b.Discount.StringFixed(2))
			assert.Equal(t, tt.wantTax, b.Tax.StringFixed(2))
			assert.Equal(t, "2.00", b.Tip.StringFixed(2))
			assert.Equal(t, tt.wantTotal, b.Total.StringFixed(2))
		})
	}
}

func TestComputeInvariants(t *testing.T) {
	items := []cart.LineItem{burgerItem(3), burgerItem(1)}

	discounts := []float64{0, 0.01, 5, 20.50, 41, 100}
	taxRates := []float64{0, 0.05, 0.08, 0.2}
	tips := []float64{0, 1.25, 10}

	for _, d := range discounts {
		for _, rate := range taxRates {
			for _, tip := range tips {
				b := pricing.Compute(items,
					decimal.NewFromFloat(d),
					decimal.NewFromFloat(rate),
					decimal.NewFromFloat(tip))

				base := b.Subtotal.Sub(b.Discount)
				assert.False(t, base.IsNegative(), "discounted base must never be negative")
				assert.True(t, b.Tax.Equal(base.Mul(decimal.NewFromFloat(rate)).Round(2)),
					"tax == max(0, subtotal-discount) * taxRate")
				assert.True(t, b.Total.Equal(base.Add(b.Tax).Add(b.Tip).Round(2)),
					"total == max(0, subtotal-discount) + tax + tip")
			}
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	items := []cart.LineItem{burgerItem(2), burgerItem(5)}
	discount := decimal.NewFromFloat(3.33)
	taxRate := decimal.NewFromFloat(0.08)
	tip := decimal.NewFromFloat(1.50)

	first := pricing.Compute(items, discount, taxRate, tip)
	for i := 0; i < 10; i++ {
		again := pricing.Compute(items, discount, taxRate, tip)
		assert.Equal(t, first.Total.String(), again.Total.String())
		assert.Equal(t, first.Subtotal.String(), again.Subtotal.String())
	}
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name string
		item cart.LineItem
		want string
	}{
		{
			name: "base_plus_variant_plus_addons",
			item: burgerItem(1),
			want: "10.25",
		},
		{
			name: "no_variant_selected",
			item: cart.LineItem{
				ProductID: "p2",
				Quantity:  1,
				Product:   catalog.Product{ID: "p2", BasePrice: 3.50},
			},
			want: "3.50",
		},
		{
			name: "stale_addon_contributes_zero",
			item: cart.LineItem{
				ProductID: "p1",
				VariantID: "v-large",
				AddOnIDs:  []string{"a-cheese", "a-removed-from-catalog"},
				Quantity:  1,
				Product:   burgerItem(1).Product,
			},
			want: "9.50",
		},
		{
			name: "stale_variant_contributes_zero",
			item: cart.LineItem{
				ProductID: "p1",
				VariantID: "v-removed-from-catalog",
				Quantity:  1,
				Product:   burgerItem(1).Product,
			},
			want: "8.00",
		},
		{
			name: "negative_variant_delta",
			item: cart.LineItem{
				ProductID: "p3",
				VariantID: "v-small",
				Quantity:  1,
				Product: catalog.Product{
					ID:        "p3",
					BasePrice: 4.00,
					Variants:  []catalog.Variant{{ID: "v-small", PriceDelta: -0.80}},
				},
			},
			want: "3.20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.UnitPrice(tt.item).StringFixed(2))
		})
	}
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "20.50", pricing.LineTotal(burgerItem(2)).StringFixed(2))
}
