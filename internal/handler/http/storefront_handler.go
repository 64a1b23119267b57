package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/checkout"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/pricing"
)

// StorefrontHandler exposes the storefront routes: menu bootstrap,
// cart mutation, coupon application, checkout and order tracking.
type StorefrontHandler struct {
	catalog   *catalog.Client
	sessions  *checkout.Manager
	submitter *order.Submitter
	tracker   *order.Tracker
}

func NewStorefrontHandler(catalogClient *catalog.Client, sessions *checkout.Manager, submitter *order.Submitter, tracker *order.Tracker) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:   catalogClient,
		sessions:  sessions,
		submitter: submitter,
		tracker:   tracker,
	}
}

type breakdownDTO struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TipAmount      float64 `json:"tip_amount"`
	Total          float64 `json:"total"`
}

func toBreakdownDTO(b pricing.Breakdown) breakdownDTO {
	return breakdownDTO{
		Subtotal:       b.Subtotal.InexactFloat64(),
		DiscountAmount: b.Discount.InexactFloat64(),
		TaxAmount:      b.Tax.InexactFloat64(),
		TipAmount:      b.Tip.InexactFloat64(),
		Total:          b.Total.InexactFloat64(),
	}
}

type couponDTO struct {
	Applied        bool    `json:"applied"`
	Code           string  `json:"code,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
}

func toCouponDTO(r coupon.Result) couponDTO {
	return couponDTO{
		Applied:        r.Applied,
		Code:           r.Code,
		DiscountAmount: r.Discount.InexactFloat64(),
	}
}

type cartResponse struct {
	Items     []cart.LineItem `json:"items"`
	Coupon    couponDTO       `json:"coupon"`
	Breakdown breakdownDTO    `json:"breakdown"`
}

func (h *StorefrontHandler) currentCart(s *checkout.Session) cartResponse {
	items := s.Store().Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartResponse{
		Items:     items,
		Coupon:    toCouponDTO(s.Coupon()),
		Breakdown: toBreakdownDTO(s.Breakdown()),
	}
}

// Bootstrap serves the storefront home view: brand config plus the
// category list. Catalog failures degrade to an empty pending view.
func (h *StorefrontHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg, err := h.catalog.PublicConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("bootstrap: public config unavailable")
		cfg = &catalog.PublicConfig{}
	}

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("bootstrap: categories unavailable")
		categories = []catalog.Category{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"brand":      cfg.Brand,
		"currency":   cfg.Currency,
		"tax_rate":   cfg.TaxRate,
		"categories": categories,
	})
}

// ListProducts serves the product list for a category slug, optionally
// narrowed by a q name query.
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.SearchProducts(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("q"))
	if err != nil {
		log.Warn().Err(err).Msg("menu: products unavailable")
		products = []catalog.Product{}
	}
	if products == nil {
		products = []catalog.Product{}
	}

	respondWithJSON(w, http.StatusOK, products)
}

// GetCart serves the current cart with its breakdown.
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	respondWithJSON(w, http.StatusOK, h.currentCart(s))
}

type addItemRequest struct {
	ProductID string   `json:"product_id"`
	VariantID string   `json:"variant_id,omitempty"`
	AddOnIDs  []string `json:"add_on_ids,omitempty"`
	Quantity  int      `json:"quantity"`
}

// AddItem appends a line item. The product snapshot is resolved from
// the cached catalog view, falling back to a full menu fetch.
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondWithError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	product, ok := h.catalog.ProductByID(req.ProductID)
	if !ok {
		// Cold cache (e.g. after a restart): pull the menu once.
		if _, err := h.catalog.Products(r.Context(), ""); err != nil {
			log.Warn().Err(err).Str("product_id", req.ProductID).Msg("cart: product resolution fetch failed")
		}
		product, ok = h.catalog.ProductByID(req.ProductID)
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	s.Store().Add(cart.LineItem{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		AddOnIDs:  req.AddOnIDs,
		Quantity:  req.Quantity,
		Product:   *product,
	})

	respondWithJSON(w, http.StatusCreated, h.currentCart(s))
}

type updateItemRequest struct {
	Quantity *int `json:"quantity,omitempty"`
	Remove   bool `json:"remove,omitempty"`
}

// UpdateItem patches the line item at the given index. The HTTP layer
// guards the index contract: an out-of-range index from the wire is a
// 404, not a panic. The checked update keeps the bounds check and the
// mutation in one critical section against concurrent shrinks.
func (h *StorefrontHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	if err := s.Store().UpdateChecked(index, cart.Patch{Quantity: req.Quantity, Remove: req.Remove}); err != nil {
		respondWithError(w, http.StatusNotFound, "no cart item at index")
		return
	}

	respondWithJSON(w, http.StatusOK, h.currentCart(s))
}

// RemoveItem deletes the line item at the given index.
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	if err := s.Store().UpdateChecked(index, cart.Patch{Remove: true}); err != nil {
		respondWithError(w, http.StatusNotFound, "no cart item at index")
		return
	}

	respondWithJSON(w, http.StatusOK, h.currentCart(s))
}

// ClearCart empties the cart.
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	s.Store().Clear()
	respondWithJSON(w, http.StatusOK, h.currentCart(s))
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon triggers the explicit coupon re-validation.
func (h *StorefrontHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	s.ApplyCoupon(r.Context(), req.Code)

	respondWithJSON(w, http.StatusOK, h.currentCart(s))
}

type setTipRequest struct {
	TipAmount float64 `json:"tip_amount"`
}

// SetTip records the user-chosen flat tip.
func (h *StorefrontHandler) SetTip(w http.ResponseWriter, r *http.Request) {
	var req setTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))
	s.SetTip(decimal.NewFromFloat(req.TipAmount))

	respondWithJSON(w, http.StatusOK, h.currentCart(s))
}

type checkoutRequest struct {
	User            order.Contact  `json:"user"`
	FulfillmentType string         `json:"fulfillment_type"`
	DeliveryAddress *order.Address `json:"delivery_address,omitempty"`
}

// Checkout submits the cart as an order. The applied coupon code and
// tip are taken from the session, not re-sent by the page.
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.User.Name == "" {
		respondWithError(w, http.StatusBadRequest, "user name is required")
		return
	}

	s := h.sessions.Session(r.Context(), sessionKeyFromContext(r.Context()))

	form := order.CheckoutForm{
		Contact:         req.User,
		Fulfillment:     order.Fulfillment(req.FulfillmentType),
		DeliveryAddress: req.DeliveryAddress,
		Tip:             s.Tip(),
	}
	if c := s.Coupon(); c.Applied {
		form.CouponCode = c.Code
	}

	created, err := h.submitter.Submit(r.Context(), s.Store(), form)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			respondWithError(w, http.StatusUnprocessableEntity, "cart is empty")
			return
		}
		var valErr *order.ValidationError
		if errors.As(err, &valErr) {
			respondWithError(w, http.StatusBadRequest, valErr.Error())
			return
		}
		var subErr *order.SubmissionError
		if errors.As(err, &subErr) {
			respondWithError(w, http.StatusBadGateway, subErr.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}

	// The cart is already cleared; drop the session-held coupon and tip
	// so the next cart starts from scratch.
	s.ClearCoupon()
	s.SetTip(decimal.Zero)

	respondWithJSON(w, http.StatusCreated, created)
}

// GetOrder serves the tracking view. Lookup failures never break the
// view: a missing order and a backend outage both render as an
// unknown/pending state rather than an error page.
func (h *StorefrontHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	o, err := h.tracker.Fetch(r.Context(), orderID)
	if err != nil {
		if !errors.Is(err, order.ErrOrderNotFound) {
			log.Warn().Err(err).Str("order_id", orderID).Msg("order lookup failed, rendering pending state")
		}
		respondWithJSON(w, http.StatusOK, map[string]string{
			"order_id":     orderID,
			"order_status": "unknown",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}
