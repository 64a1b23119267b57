package order_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
)

func TestTracker_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/o-42", r.URL.Path)
		w.Write([]byte(`{
			"order_id": "o-42",
			"order_status": "received",
			"payment_status": "pending",
			"fulfillment_type": "pickup",
			"totals": {"subtotal": 20.50, "tax_amount": 1.64, "tip_amount": 2.00, "total": 24.14}
		}`))
	}))
	defer srv.Close()

	tracker := order.NewTracker(srv.URL, srv.Client())
	o, err := tracker.Fetch(context.Background(), "o-42")

	require.NoError(t, err)
	assert.Equal(t, "o-42", o.ID)
	assert.Equal(t, "received", o.Status)
	assert.Equal(t, order.FulfillmentPickup, o.FulfillmentType)
	assert.InDelta(t, 24.14, o.Totals.Total, 0.001)
}

func TestTracker_FetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Order not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	tracker := order.NewTracker(srv.URL, srv.Client())
	_, err := tracker.Fetch(context.Background(), "missing")

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestTracker_FetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tracker := order.NewTracker(srv.URL, srv.Client())
	_, err := tracker.Fetch(context.Background(), "o-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, order.ErrOrderNotFound)
}
