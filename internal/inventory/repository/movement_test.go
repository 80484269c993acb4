package repository_test

import (
	"context"
	"testing"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/internal/inventory/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementRepository_Create_Defaults(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, ctx, "movement-create")
	repo := repository.NewMovementRepository(db)

	movement := &domain.InventoryMovement{
		BranchID:      "branch-1",
		ProductID:     "shampoo",
		Type:          domain.MovementStockIn,
		Quantity:      50,
		PreviousStock: 0,
		NewStock:      50,
		Reason:        "purchase order delivery",
	}
	require.NoError(t, repo.Create(ctx, movement))

	assert.NotEmpty(t, movement.ID)
	assert.Equal(t, "system", movement.CreatedBy)
	assert.False(t, movement.CreatedAt.IsZero())
}

func TestMovementRepository_Create_WithBatchDeductions(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, ctx, "movement-deductions")
	repo := repository.NewMovementRepository(db)

	movement := &domain.InventoryMovement{
		BranchID:      "branch-1",
		ProductID:     "shampoo",
		Type:          domain.MovementStockOut,
		Quantity:      30,
		PreviousStock: 100,
		NewStock:      70,
		Reason:        "appointment usage",
		Notes:         strPtr("walk-in color treatment"),
		BatchDeductions: domain.BatchDeductionList{
			{BatchID: "b1", BatchNumber: "PO-2026-0001-BATCH-001", Deducted: 20, Remaining: 0},
			{BatchID: "b2", BatchNumber: "PO-2026-0001-BATCH-002", Deducted: 10, Remaining: 40},
		},
		CreatedBy: "stylist-7",
	}
	require.NoError(t, repo.Create(ctx, movement))

	found, err := repo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, "stylist-7", got.CreatedBy)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "walk-in color treatment", *got.Notes)
	require.Len(t, got.BatchDeductions, 2)
	assert.Equal(t, 30, got.BatchDeductions.Total())
	assert.Equal(t, "PO-2026-0001-BATCH-001", got.BatchDeductions[0].BatchNumber)
	assert.Equal(t, 0, got.BatchDeductions[0].Remaining)
}

func TestMovementRepository_ListByBranch_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, ctx, "movement-list-branch")
	repo := repository.NewMovementRepository(db)

	for i := 0; i < 5; i++ {
		movement := &domain.InventoryMovement{
			BranchID:      "branch-1",
			ProductID:     "shampoo",
			Type:          domain.MovementStockIn,
			Quantity:      10,
			PreviousStock: i * 10,
			NewStock:      (i + 1) * 10,
			Reason:        "restock",
		}
		require.NoError(t, repo.Create(ctx, movement))
	}

	movements, err := repo.ListByBranch(ctx, "branch-1", 3)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, 50, movements[0].NewStock)
}

func TestMovementRepository_ListByProduct_FiltersProduct(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, ctx, "movement-list-product")
	repo := repository.NewMovementRepository(db)

	for _, productID := range []string{"shampoo", "conditioner", "shampoo"} {
		movement := &domain.InventoryMovement{
			BranchID:  "branch-1",
			ProductID: productID,
			Type:      domain.MovementStockIn,
			Quantity:  5,
			NewStock:  5,
			Reason:    "restock",
		}
		require.NoError(t, repo.Create(ctx, movement))
	}

	movements, err := repo.ListByProduct(ctx, "branch-1", "shampoo", 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, "shampoo", m.ProductID)
	}
}
