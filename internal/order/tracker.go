package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrOrderNotFound is returned for a missing or invalid order id. The
// caller renders it as an unknown/pending state, not an error page.
var ErrOrderNotFound = errors.New("order: not found")

// Tracker is the read-only order lookup for the confirmation view.
type Tracker struct {
	httpClient *http.Client
	baseURL    string
}

func NewTracker(baseURL string, httpClient *http.Client) *Tracker {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Tracker{httpClient: httpClient, baseURL: baseURL}
}

// Fetch looks up an order by identifier.
func (t *Tracker) Fetch(ctx context.Context, orderID string) (*Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/orders/"+orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("order: failed to build request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order: lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order: unexpected status %d", resp.StatusCode)
	}

	var o Order
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return nil, fmt.Errorf("order: failed to decode response: %w", err)
	}

	return &o, nil
}
