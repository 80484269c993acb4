package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveryBody(po string, days int) string {
	expiry := time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
	return fmt.Sprintf(`{
		"purchase_order_id": %q,
		"branch_id": "branch-1",
		"items": [
			{"product_id": "shampoo", "quantity": 100, "unit_price": "8.75", "expiration_date": %q}
		],
		"received_by": "manager-3"
	}`, po, expiry)
}

func TestDeliverEndpoint_CreatesBatches(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-deliver")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", deliveryBody("PO-2026-0300", 90))
	assert.Equal(t, http.StatusCreated, rr.Code, "Body: %s", rr.Body.String())

	resp := decodeResponse(t, rr)
	batches := resp.Data.([]interface{})
	require.Len(t, batches, 1)

	batch := batches[0].(map[string]interface{})
	assert.Equal(t, "PO-2026-0300-BATCH-001", batch["batch_number"])
	assert.Equal(t, "active", batch["status"])
	assert.Equal(t, float64(100), batch["remaining_quantity"])
}

func TestDeliverEndpoint_BadDateFormat(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-deliver-bad-date")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", `{
		"purchase_order_id": "PO-2026-0301",
		"branch_id": "branch-1",
		"items": [
			{"product_id": "shampoo", "quantity": 10, "unit_price": "8.75", "expiration_date": "12/31/2026"}
		]
	}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	resp := decodeResponse(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestDeliverEndpoint_MissingExpirationDate(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-deliver-no-expiry")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", `{
		"purchase_order_id": "PO-2026-0302",
		"branch_id": "branch-1",
		"items": [
			{"product_id": "shampoo", "quantity": 10, "unit_price": "8.75"}
		]
	}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeductEndpoint_Success(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-deduct")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", deliveryBody("PO-2026-0310", 60))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, "POST", "/api/v1/inventory/stocks/deduct", `{
		"branch_id": "branch-1", "product_id": "shampoo", "quantity": 30,
		"reason": "appointment usage"
	}`)
	assert.Equal(t, http.StatusOK, rr.Code, "Body: %s", rr.Body.String())

	resp := decodeResponse(t, rr)
	data := resp.Data.(map[string]interface{})

	rec := data["stock_record"].(map[string]interface{})
	assert.Equal(t, float64(70), rec["current_stock"])

	deductions := data["batch_deductions"].([]interface{})
	require.Len(t, deductions, 1)
	first := deductions[0].(map[string]interface{})
	assert.Equal(t, "PO-2026-0310-BATCH-001", first["batch_number"])
	assert.Equal(t, float64(30), first["deducted"])
	assert.Equal(t, float64(70), first["remaining"])
}

func TestDeductEndpoint_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-deduct-insufficient")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", deliveryBody("PO-2026-0311", 60))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, "POST", "/api/v1/inventory/stocks/deduct", `{
		"branch_id": "branch-1", "product_id": "shampoo", "quantity": 500,
		"reason": "appointment usage"
	}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	resp := decodeResponse(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	assert.Equal(t, "100", resp.Error.Details["available"])
	assert.Equal(t, "500", resp.Error.Details["requested"])
}

func TestListBatchesEndpoint(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-list-batches")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", deliveryBody("PO-2026-0320", 20))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, "GET", "/api/v1/inventory/branches/branch-1/batches?product_id=shampoo", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse(t, rr)
	batches := resp.Data.([]interface{})
	require.Len(t, batches, 1)
	assert.Equal(t, "Expiring Soon", batches[0].(map[string]interface{})["expiry_status"])
}

func TestSweepEndpoint_ReportsCount(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-sweep")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", deliveryBody("PO-2026-0330", -3))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, "POST", "/api/v1/inventory/branches/branch-1/batches/expiration-sweep", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse(t, rr)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["expired"])

	// Running it again finds nothing new
	rr = doJSON(t, r, "POST", "/api/v1/inventory/branches/branch-1/batches/expiration-sweep", "")
	resp = decodeResponse(t, rr)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["expired"])
}

func TestExpiringEndpoint_BadDaysParam(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-expiring-bad-days")

	rr := doJSON(t, r, "GET", "/api/v1/inventory/branches/branch-1/batches/expiring?days=soon", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExpiredEndpoint(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, ctx, "h-expired")

	rr := doJSON(t, r, "POST", "/api/v1/inventory/deliveries", deliveryBody("PO-2026-0340", -1))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, "POST", "/api/v1/inventory/branches/branch-1/batches/expiration-sweep", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, "GET", "/api/v1/inventory/branches/branch-1/batches/expired", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse(t, rr)
	batches := resp.Data.([]interface{})
	require.Len(t, batches, 1)
	assert.Equal(t, "expired", batches[0].(map[string]interface{})["status"])
}
