package cart

import (
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/catalog"
)

// LineItem is one cart entry: a product selection with variant,
// add-ons and quantity. Product is the denormalized snapshot needed to
// resolve the unit price and render the item without a re-fetch.
type LineItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	AddOnIDs  []string        `json:"add_on_ids,omitempty"`
	Quantity  int             `json:"quantity"`
	Product   catalog.Product `json:"product"`
}

// Patch describes a partial update of a line item. Remove deletes the
// item; otherwise non-nil fields are merged into it.
type Patch struct {
	Quantity *int
	Remove   bool
}
