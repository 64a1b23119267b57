package catalog

// Image is a displayable product image reference.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Variant is a mutually-exclusive product option (e.g. size) with a
// price adjustment relative to the product base price.
type Variant struct {
	ID         string  `json:"variant_id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

// AddOn is an independently selectable product extra with a price
// adjustment. Deltas are non-negative by convention, not enforced.
type AddOn struct {
	ID         string  `json:"add_on_id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

// Product is immutable once fetched from the catalog service.
type Product struct {
	ID          string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BasePrice   float64   `json:"base_price"`
	Categories  []string  `json:"categories,omitempty"`
	Images      []Image   `json:"images,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	AddOns      []AddOn   `json:"add_ons,omitempty"`
}

// VariantByID returns the product variant with the given id.
func (p *Product) VariantByID(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// AddOnByID returns the product add-on with the given id.
func (p *Product) AddOnByID(id string) (*AddOn, bool) {
	for i := range p.AddOns {
		if p.AddOns[i].ID == id {
			return &p.AddOns[i], true
		}
	}
	return nil, false
}

// DefaultVariantID is the variant selected for a new line item when
// the product has variants: always the first one.
func (p *Product) DefaultVariantID() string {
	if len(p.Variants) == 0 {
		return ""
	}
	return p.Variants[0].ID
}

// Category is a menu navigation entry.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Brand carries the display identity from the public config.
type Brand struct {
	Name string `json:"name"`
}

// PublicConfig is the storefront bootstrap payload. TaxRate is the
// external configuration value the pricing engine multiplies by; the
// client never derives it.
type PublicConfig struct {
	Brand    Brand   `json:"brand"`
	Currency string  `json:"currency,omitempty"`
	TaxRate  float64 `json:"tax_rate"`
}
