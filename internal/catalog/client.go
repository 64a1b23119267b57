package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Client fetches the menu and public config from the catalog service.
// It is read-only: no logic beyond request/response mapping plus an
// in-memory per-category cache for the current view.
type Client struct {
	httpClient *http.Client
	baseURL    string

	sfg singleflight.Group // dedupes concurrent fetches per category

	mu       sync.RWMutex
	products map[string][]Product
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		products:   make(map[string][]Product),
	}
}

// PublicConfig fetches brand and tax rate settings.
func (c *Client) PublicConfig(ctx context.Context) (*PublicConfig, error) {
	var cfg PublicConfig
	if err := c.getJSON(ctx, "/config/public", &cfg); err != nil {
		return nil, fmt.Errorf("catalog: failed to fetch public config: %w", err)
	}
	return &cfg, nil
}

// Categories fetches the ordered category list.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/menu/categories", &categories); err != nil {
		return nil, fmt.Errorf("catalog: failed to fetch categories: %w", err)
	}
	return categories, nil
}

// Products fetches the product list for a category slug (empty slug
// means the full menu). Results are cached for the lifetime of the
// client; concurrent misses for the same slug share one fetch.
func (c *Client) Products(ctx context.Context, category string) ([]Product, error) {
	c.mu.RLock()
	cached, ok := c.products[category]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.sfg.Do(category, func() (interface{}, error) {
		path := "/menu/products"
		if category != "" {
			path += "?category=" + url.QueryEscape(category)
		}

		var products []Product
		if err := c.getJSON(ctx, path, &products); err != nil {
			return nil, fmt.Errorf("catalog: failed to fetch products for category %q: %w", category, err)
		}

		c.mu.Lock()
		c.products[category] = products
		c.mu.Unlock()

		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]Product), nil
}

// SearchProducts fetches products matching a name query within an
// optional category. An empty query is the plain category listing.
// Search results are not cached: the query space is unbounded.
func (c *Client) SearchProducts(ctx context.Context, category, query string) ([]Product, error) {
	if query == "" {
		return c.Products(ctx, category)
	}

	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	params.Set("q", query)

	var products []Product
	if err := c.getJSON(ctx, "/menu/products?"+params.Encode(), &products); err != nil {
		return nil, fmt.Errorf("catalog: failed to search products for %q: %w", query, err)
	}
	return products, nil
}

// ProductByID resolves a product from the cached view. It never goes to
// the network: pricing resolution works off data the view already holds.
func (c *Client) ProductByID(id string) (*Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, products := range c.products {
		for i := range products {
			if products[i].ID == id {
				return &products[i], true
			}
		}
	}
	return nil, false
}

// InvalidateCache drops the cached product lists, forcing the next
// Products call to re-fetch.
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.products = make(map[string][]Product)
	c.mu.Unlock()
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("catalog: unexpected response status")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
