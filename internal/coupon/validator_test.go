package coupon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/coupon"
)

func TestValidate_AppliesDiscount(t *testing.T) {
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cart/validate-coupon", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"discount_amount": 5.00, "code": "SAVE5"}`))
	}))
	defer srv.Close()

	v := coupon.NewValidator(srv.URL, srv.Client())
	result := v.Validate(context.Background(), "SAVE5", decimal.NewFromFloat(20.50))

	assert.True(t, result.Applied)
	assert.Equal(t, "SAVE5", result.Code)
	assert.Equal(t, "5.00", result.Discount.StringFixed(2))

	assert.Equal(t, "SAVE5", gotBody["code"])
	assert.InDelta(t, 20.50, gotBody["subtotal"], 0.001)
}

func TestValidate_EmptyCodeShortCircuits(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	v := coupon.NewValidator(srv.URL, srv.Client())

	for _, code := range []string{"", "   "} {
		result := v.Validate(context.Background(), code, decimal.NewFromFloat(10))
		assert.False(t, result.Applied)
		assert.True(t, result.Discount.IsZero())
	}

	assert.Equal(t, int64(0), atomic.LoadInt64(&calls), "empty code must not call the coupon service")
}

func TestValidate_FailuresYieldNoDiscount(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "invalid_code_404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"Invalid coupon code"}`, http.StatusNotFound)
			},
		},
		{
			name: "subtotal_too_low_400",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"Subtotal too low for this coupon"}`, http.StatusBadRequest)
			},
		},
		{
			name: "server_error_500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed_body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"discount_amount": "not a number"`))
			},
		},
		{
			name: "negative_discount",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"discount_amount": -3.00}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			v := coupon.NewValidator(srv.URL, srv.Client())
			result := v.Validate(context.Background(), "ANY", decimal.NewFromFloat(10))

			assert.False(t, result.Applied)
			assert.True(t, result.Discount.IsZero())
		})
	}
}

func TestValidate_NetworkFailureYieldsNoDiscount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	v := coupon.NewValidator(srv.URL, nil)
	result := v.Validate(context.Background(), "SAVE5", decimal.NewFromFloat(10))

	assert.False(t, result.Applied)
	assert.True(t, result.Discount.IsZero())
}
