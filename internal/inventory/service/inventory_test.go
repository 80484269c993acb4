package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStock_CreatesRecordOnFirstReceipt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "add-stock-create")

	rec, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  50,
		UnitCost:  decimal.NewFromFloat(12.50),
		MinStock:  intPtr(10),
		MaxStock:  intPtr(200),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 50, rec.CurrentStock)
	assert.Equal(t, 10, rec.MinStock)
	assert.Equal(t, domain.StockStatusInStock, rec.Status)
	require.NotNil(t, rec.LastRestocked)

	movements, err := env.movementRepo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementStockIn, movements[0].Type)
	assert.Equal(t, 0, movements[0].PreviousStock)
	assert.Equal(t, 50, movements[0].NewStock)
}

func TestAddStock_IncrementsExistingRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "add-stock-increment")

	_, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  30,
		MinStock:  intPtr(10),
	})
	require.NoError(t, err)

	rec, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  20,
		UnitCost:  decimal.NewFromFloat(14.00),
	})
	require.NoError(t, err)

	assert.Equal(t, 50, rec.CurrentStock)
	assert.True(t, rec.UnitCost.Equal(decimal.NewFromFloat(14.00)), "latest purchase cost wins")

	movements, err := env.movementRepo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestAddStock_RejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "add-stock-invalid")

	_, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  0,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestReduceStock_DecrementsAndLogsMovement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "reduce-stock")

	_, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  50,
		MinStock:  intPtr(10),
	})
	require.NoError(t, err)

	rec, err := env.svc.ReduceStock(ctx, service.ReduceStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  15,
		Reason:    "damaged goods",
	})
	require.NoError(t, err)
	assert.Equal(t, 35, rec.CurrentStock)
	assert.Equal(t, domain.StockStatusInStock, rec.Status)

	movements, err := env.movementRepo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementStockOut, movements[0].Type)
	assert.Equal(t, 15, movements[0].Quantity)
	assert.Equal(t, "damaged goods", movements[0].Reason)
}

func TestReduceStock_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "reduce-stock-clamp")

	_, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  10,
	})
	require.NoError(t, err)

	rec, err := env.svc.ReduceStock(ctx, service.ReduceStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  25,
		Reason:    "inventory correction",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.CurrentStock)
	assert.Equal(t, domain.StockStatusOutOfStock, rec.Status)

	// The movement records what was actually removed, not what was asked
	movements, err := env.movementRepo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, movements[0].Quantity)
	assert.Equal(t, 0, movements[0].NewStock)
}

func TestReduceStock_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "reduce-stock-unknown")

	_, err := env.svc.ReduceStock(ctx, service.ReduceStockInput{
		BranchID:  "branch-1",
		ProductID: "ghost",
		Quantity:  5,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUpdateStock_PatchesFieldsAndRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "update-stock-patch")

	created, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  50,
		MinStock:  intPtr(10),
	})
	require.NoError(t, err)

	// Raising the threshold above current stock flips the record to low
	rec, err := env.svc.UpdateStock(ctx, created.ID, service.UpdateStockInput{
		MinStock: intPtr(60),
	})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.CurrentStock)
	assert.Equal(t, 60, rec.MinStock)
	assert.Equal(t, domain.StockStatusLowStock, rec.Status)

	cost := decimal.NewFromFloat(19.90)
	rec, err = env.svc.UpdateStock(ctx, created.ID, service.UpdateStockInput{
		CurrentStock: intPtr(0),
		UnitCost:     &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StockStatusOutOfStock, rec.Status)
	assert.True(t, rec.UnitCost.Equal(cost))

	// Administrative corrections leave the movement log alone
	movements, err := env.movementRepo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestUpdateStock_RejectsNegativeValues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "update-stock-negative")

	created, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  10,
	})
	require.NoError(t, err)

	_, err = env.svc.UpdateStock(ctx, created.ID, service.UpdateStockInput{
		CurrentStock: intPtr(-5),
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestGetBranchStocks_StatusFilter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "branch-stocks-filter")

	seed := []struct {
		product string
		qty     int
		min     int
	}{
		{"shampoo", 50, 10},
		{"conditioner", 8, 10},
		{"hair-dye", 30, 5},
	}
	for _, s := range seed {
		_, err := env.svc.AddStock(ctx, service.AddStockInput{
			BranchID:  "branch-1",
			ProductID: s.product,
			Quantity:  s.qty,
			MinStock:  intPtr(s.min),
		})
		require.NoError(t, err)
	}

	all, err := env.svc.GetBranchStocks(ctx, "branch-1", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	low, err := env.svc.GetBranchStocks(ctx, "branch-1", domain.StockStatusLowStock, "")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "conditioner", low[0].ProductID)
}

func TestGetMovements_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, ctx, "movements-limit")

	_, err := env.svc.AddStock(ctx, service.AddStockInput{
		BranchID:  "branch-1",
		ProductID: "shampoo",
		Quantity:  10,
	})
	require.NoError(t, err)

	movements, err := env.svc.GetMovements(ctx, "branch-1", "", 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	byProduct, err := env.svc.GetMovements(ctx, "branch-1", "shampoo", 5)
	require.NoError(t, err)
	assert.Len(t, byProduct, 1)
}
