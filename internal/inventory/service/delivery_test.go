package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/salonhq/salon-backend/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expiryIn(days int) *time.Time {
	d := time.Now().UTC().AddDate(0, 0, days)
	return &d
}

func TestCreateBatchesForDelivery_CreatesNumberedBatchesAndLedger(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-create")

	batches, err := env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "PO-2026-0100",
		BranchID:        "branch-1",
		Items: []service.DeliveryItem{
			{ProductID: "shampoo", Quantity: 100, UnitPrice: decimal.NewFromFloat(8.75), ExpirationDate: expiryIn(90)},
			{ProductID: "conditioner", Quantity: 60, UnitPrice: decimal.NewFromFloat(11.20), ExpirationDate: expiryIn(120)},
		},
		ReceivedBy: "manager-3",
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, "PO-2026-0100-BATCH-001", batches[0].BatchNumber)
	assert.Equal(t, "PO-2026-0100-BATCH-002", batches[1].BatchNumber)
	assert.Equal(t, domain.BatchStatusActive, batches[0].Status)
	assert.Equal(t, 100, batches[0].RemainingQuantity)
	assert.Equal(t, "manager-3", batches[0].ReceivedBy)

	// Each line item landed on the ledger
	shampoo, err := env.stockRepo.Get(ctx, "branch-1", "shampoo")
	require.NoError(t, err)
	assert.Equal(t, 100, shampoo.CurrentStock)
	assert.True(t, shampoo.UnitCost.Equal(decimal.NewFromFloat(8.75)))

	conditioner, err := env.stockRepo.Get(ctx, "branch-1", "conditioner")
	require.NoError(t, err)
	assert.Equal(t, 60, conditioner.CurrentStock)

	movements, err := env.movementRepo.ListByBranch(ctx, "branch-1", 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, domain.MovementStockIn, m.Type)
		assert.Equal(t, "purchase order delivery", m.Reason)
	}
}

func TestCreateBatchesForDelivery_ContinuesSequenceAcrossDeliveries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-sequence")

	first, err := env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "PO-2026-0101",
		BranchID:        "branch-1",
		Items: []service.DeliveryItem{
			{ProductID: "shampoo", Quantity: 40, ExpirationDate: expiryIn(60)},
		},
	})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "PO-2026-0101-BATCH-001", first[0].BatchNumber)

	// The rest of the order arrives a day later
	second, err := env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "PO-2026-0101",
		BranchID:        "branch-1",
		Items: []service.DeliveryItem{
			{ProductID: "shampoo", Quantity: 35, ExpirationDate: expiryIn(60)},
			{ProductID: "hair-dye", Quantity: 12, ExpirationDate: expiryIn(200)},
		},
	})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "PO-2026-0101-BATCH-002", second[0].BatchNumber)
	assert.Equal(t, "PO-2026-0101-BATCH-003", second[1].BatchNumber)
}

func TestCreateBatchesForDelivery_SkipsInvalidItems(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-skip-invalid")

	batches, err := env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "PO-2026-0102",
		BranchID:        "branch-1",
		Items: []service.DeliveryItem{
			{ProductID: "", Quantity: 10, ExpirationDate: expiryIn(30)},
			{ProductID: "shampoo", Quantity: 0, ExpirationDate: expiryIn(30)},
			{ProductID: "shampoo", Quantity: -4, ExpirationDate: expiryIn(30)},
			{ProductID: "conditioner", Quantity: 15, ExpirationDate: expiryIn(30)},
		},
	})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "conditioner", batches[0].ProductID)
	// Skipped rows never consume a sequence number
	assert.Equal(t, "PO-2026-0102-BATCH-001", batches[0].BatchNumber)
}

func TestCreateBatchesForDelivery_MissingExpirationDateFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-missing-expiry")

	_, err := env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "PO-2026-0103",
		BranchID:        "branch-1",
		Items: []service.DeliveryItem{
			{ProductID: "shampoo", Quantity: 40, ExpirationDate: expiryIn(60)},
			{ProductID: "conditioner", Quantity: 20},
		},
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
	assert.Contains(t, appErr.Message, "conditioner")

	// The whole delivery is rejected, including the valid line
	batches, err := env.batchRepo.List(ctx, "branch-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, batches)

	_, err = env.stockRepo.Get(ctx, "branch-1", "shampoo")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCreateBatchesForDelivery_RequiresOrderAndBranch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-missing-ids")

	_, err := env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "",
		BranchID:        "branch-1",
	})
	require.Error(t, err)

	_, err = env.svc.CreateBatchesForDelivery(ctx, service.DeliveryInput{
		PurchaseOrderID: "PO-2026-0104",
		BranchID:        "",
	})
	require.Error(t, err)
}

func TestHandleOrderDelivered_ParsesEventAndCreatesBatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-event")

	err := env.svc.HandleOrderDelivered(ctx, messaging.OrderDeliveredEvent{
		PurchaseOrderID: "PO-2026-0110",
		BranchID:        "branch-1",
		ReceivedBy:      "manager-3",
		Items: []messaging.OrderDeliveredItem{
			{
				ProductID:      "shampoo",
				ProductName:    "Argan Shampoo 500ml",
				Quantity:       80,
				UnitPrice:      "8.75",
				ExpirationDate: time.Now().UTC().AddDate(0, 0, 90).Format("2006-01-02"),
			},
		},
	})
	require.NoError(t, err)

	batches, err := env.batchRepo.List(ctx, "branch-1", "shampoo", "")
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "PO-2026-0110-BATCH-001", batches[0].BatchNumber)
	assert.Equal(t, 80, batches[0].RemainingQuantity)
	assert.True(t, batches[0].UnitCost.Equal(decimal.NewFromFloat(8.75)))
}

func TestHandleOrderDelivered_InvalidPayload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "delivery-event-invalid")

	err := env.svc.HandleOrderDelivered(ctx, messaging.OrderDeliveredEvent{
		PurchaseOrderID: "PO-2026-0111",
		BranchID:        "branch-1",
		Items: []messaging.OrderDeliveredItem{
			{ProductID: "shampoo", Quantity: 10, UnitPrice: "not-a-number", ExpirationDate: "2026-12-01"},
		},
	})
	require.Error(t, err)

	err = env.svc.HandleOrderDelivered(ctx, messaging.OrderDeliveredEvent{
		PurchaseOrderID: "PO-2026-0112",
		BranchID:        "branch-1",
		Items: []messaging.OrderDeliveredItem{
			{ProductID: "shampoo", Quantity: 10, UnitPrice: "8.75", ExpirationDate: "12/01/2026"},
		},
	})
	require.Error(t, err)
}
