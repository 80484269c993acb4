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

// PurchasingClient reads purchase order records from the purchasing
// service. Order approval and state transitions live there; the inventory
// core only needs to look up an order when reconciling a delivery.
type PurchasingClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewPurchasingClient creates a new purchasing service client
func NewPurchasingClient(baseURL string, log *logger.Logger) *PurchasingClient {
	return &PurchasingClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
}

// PurchaseOrderItem is one line item of a purchase order
type PurchaseOrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// PurchaseOrder is the purchasing service's view of an order
type PurchaseOrder struct {
	ID         string              `json:"id"`
	BranchID   string              `json:"branch_id"`
	SupplierID string              `json:"supplier_id"`
	Status     string              `json:"status"`
	Items      []PurchaseOrderItem `json:"items"`
}

// GetOrder fetches a purchase order by ID
func (c *PurchasingClient) GetOrder(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/orders/"+orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call purchasing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound("purchase order")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("get order failed with status %d: %v", resp.StatusCode, errResp)
	}

	var response struct {
		Success bool          `json:"success"`
		Data    PurchaseOrder `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response.Data, nil
}
