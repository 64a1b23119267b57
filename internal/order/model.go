package order

import (
	"github.com/shopspring/decimal"
)

// Fulfillment gates whether a delivery address is required.
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

func (f Fulfillment) IsValid() bool {
	return f == FulfillmentPickup || f == FulfillmentDelivery
}

// Contact is the customer contact data captured at checkout.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Address is a delivery address. Only sent for delivery fulfillment.
type Address struct {
	Street       string `json:"street"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Instructions string `json:"instructions,omitempty"`
}

// Totals are the computed amounts at submission time, owned by the
// order service and read back verbatim.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TipAmount      float64 `json:"tip_amount"`
	Total          float64 `json:"total"`
}

// Order is the order service's record. The client never mutates it
// after submission; the status value is opaque beyond display.
type Order struct {
	ID              string      `json:"order_id"`
	Status          string      `json:"order_status"`
	PaymentStatus   string      `json:"payment_status,omitempty"`
	FulfillmentType Fulfillment `json:"fulfillment_type,omitempty"`
	Totals          Totals      `json:"totals"`
}

// CheckoutForm is the contact/fulfillment data gathered from the
// checkout page, plus the user-chosen flat tip.
type CheckoutForm struct {
	Contact         Contact
	Fulfillment     Fulfillment
	DeliveryAddress *Address
	Tip             decimal.Decimal
	CouponCode      string
}
