package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/salonhq/salon-backend/pkg/logger"
)

// CatalogClient reads product master data from the catalog service. The
// inventory core never writes to the catalog; products are an opaque
// external collaborator identified by product ID.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewCatalogClient creates a new catalog service client
func NewCatalogClient(baseURL string, log *logger.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
}

// Product is the catalog's view of a product
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	BaseCost string `json:"base_cost"`
}

// GetProduct fetches a product by ID
func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*Product, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/products/"+productID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound("product")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("get product failed with status %d: %v", resp.StatusCode, errResp)
	}

	var response struct {
		Success bool    `json:"success"`
		Data    Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response.Data, nil
}

// GetProducts fetches several products in one call. Unknown IDs are simply
// absent from the result, so callers can enrich best-effort.
func (c *CatalogClient) GetProducts(ctx context.Context, productIDs []string) (map[string]*Product, error) {
	if len(productIDs) == 0 {
		return map[string]*Product{}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/products", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := httpReq.URL.Query()
	for _, id := range productIDs {
		q.Add("id", id)
	}
	httpReq.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("list products failed with status %d: %v", resp.StatusCode, errResp)
	}

	var response struct {
		Success bool      `json:"success"`
		Data    []Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	products := make(map[string]*Product, len(response.Data))
	for i := range response.Data {
		products[response.Data[i].ID] = &response.Data[i]
	}
	return products, nil
}
