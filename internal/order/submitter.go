package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
)

var (
	// ErrEmptyCart is returned when submission is attempted with no
	// line items. No outbound call is made and no state changes.
	ErrEmptyCart = errors.New("order: cart is empty")

	errMissingAddress = errors.New("delivery fulfillment requires a delivery address")
)

// ValidationError reports a checkout form rejected before any outbound
// call is made. It is a caller mistake, not an upstream failure; the
// cart is untouched.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order: invalid checkout form: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SubmissionError wraps a failure of the order-creation write path
// (network, server rejection). The cart is
// left untouched so the user can retry without re-entering selections.
//
// Exactly-once is not guaranteed: a timeout after the server created
// the order looks like a failure here, and a retry may duplicate it.
// No idempotency key is attached in the current design.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order: submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Submitter maps the cart plus checkout form into an order-creation
// request against the order service.
type Submitter struct {
	httpClient *http.Client
	baseURL    string
}

func NewSubmitter(baseURL string, httpClient *http.Client) *Submitter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Submitter{httpClient: httpClient, baseURL: baseURL}
}

type itemInput struct {
	ProductID string   `json:"product_id"`
	VariantID string   `json:"variant_id,omitempty"`
	Quantity  int      `json:"quantity"`
	AddOnIDs  []string `json:"add_on_ids"`
}

type createRequest struct {
	Items           []itemInput `json:"items"`
	User            Contact     `json:"user"`
	FulfillmentType Fulfillment `json:"fulfillment_type"`
	DeliveryAddress *Address    `json:"delivery_address,omitempty"`
	TipAmount       float64     `json:"tip_amount"`
	CouponCode      string      `json:"coupon_code,omitempty"`
}

// Submit creates an order from the cart store contents and the form
// data. The request carries identifiers and quantities only, never the
// denormalized product payload, and the delivery address is omitted
// entirely for pickup. On success the cart store is cleared and the
// created order returned; on failure the cart is untouched and the
// cause comes back as a *ValidationError (form rejected locally) or a
// *SubmissionError (write path failed).
func (s *Submitter) Submit(ctx context.Context, store *cart.Store, form CheckoutForm) (*Order, error) {
	items := store.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if !form.Fulfillment.IsValid() {
		return nil, &ValidationError{Err: fmt.Errorf("unknown fulfillment type %q", form.Fulfillment)}
	}
	if form.Fulfillment == FulfillmentDelivery && form.DeliveryAddress == nil {
		return nil, &ValidationError{Err: errMissingAddress}
	}

	req := createRequest{
		Items:           make([]itemInput, 0, len(items)),
		User:            form.Contact,
		FulfillmentType: form.Fulfillment,
		TipAmount:       form.Tip.Round(2).InexactFloat64(),
		CouponCode:      form.CouponCode,
	}
	if form.Fulfillment == FulfillmentDelivery {
		req.DeliveryAddress = form.DeliveryAddress
	}
	for _, item := range items {
		addOnIDs := item.AddOnIDs
		if addOnIDs == nil {
			addOnIDs = []string{}
		}
		req.Items = append(req.Items, itemInput{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			AddOnIDs:  addOnIDs,
		})
	}

	created, err := s.post(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("order: submission failed, cart preserved for retry")
		return nil, &SubmissionError{Err: err}
	}

	store.Clear()
	log.Info().Str("order_id", created.ID).Str("status", created.Status).Msg("order: created")

	return created, nil
}

func (s *Submitter) post(ctx context.Context, payload createRequest) (*Order, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/orders/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("order service rejected submission: status %d: %s", resp.StatusCode, detail)
	}

	var created Order
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &created, nil
}
