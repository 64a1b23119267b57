package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Result is the tagged outcome of a coupon validation. Applied is true
// only when the coupon service accepted the code; every other outcome
// (absent code, rejected code, lookup failure) is the zero value, i.e.
// no discount. The fail-open policy is deliberate: a discount is a pure
// reduction with a safe default, so failures degrade to full price
// instead of surfacing an error.
type Result struct {
	Applied  bool
	Code     string
	Discount decimal.Decimal
}

// NoDiscount is the outcome for absent, invalid or unverifiable codes.
func NoDiscount() Result {
	return Result{Discount: decimal.Zero}
}

// Validator submits coupon codes to the coupon service, the sole
// authority on code validity and discount computation.
type Validator struct {
	httpClient *http.Client
	baseURL    string
}

func NewValidator(baseURL string, httpClient *http.Client) *Validator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Validator{httpClient: httpClient, baseURL: baseURL}
}

type validateRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
}

type validateResponse struct {
	DiscountAmount float64 `json:"discount_amount"`
}

// Validate submits {code, subtotal} and returns the resolved discount.
// An empty code short-circuits to no discount without an outbound
// call. Validation runs only when the user explicitly submits a code,
// never on cart mutation.
func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return NoDiscount()
	}

	body, err := json.Marshal(validateRequest{
		Code:     code,
		Subtotal: subtotal.InexactFloat64(),
	})
	if err != nil {
		log.Error().Err(err).Msg("coupon: failed to encode validation request")
		return NoDiscount()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/cart/validate-coupon", bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("coupon: failed to build validation request")
		return NoDiscount()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("code", code).Msg("coupon: validation call failed, applying no discount")
		return NoDiscount()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Info().Str("code", code).Int("status", resp.StatusCode).Msg("coupon: code rejected by coupon service")
		return NoDiscount()
	}

	var vr validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("coupon: malformed validation response, applying no discount")
		return NoDiscount()
	}

	discount := decimal.NewFromFloat(vr.DiscountAmount)
	if discount.IsNegative() {
		log.Warn().Str("code", code).Str("discount", discount.String()).Msg("coupon: negative discount from service, applying no discount")
		return NoDiscount()
	}

	return Result{
		Applied:  true,
		Code:     code,
		Discount: discount.Round(2),
	}
}

// String renders the outcome for logs.
func (r Result) String() string {
	if !r.Applied {
		return "no discount"
	}
	return fmt.Sprintf("%s (-%s)", r.Code, r.Discount.StringFixed(2))
}
