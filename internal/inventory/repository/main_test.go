package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/internal/inventory/repository"
	"github.com/salonhq/salon-backend/pkg/database"
	"github.com/salonhq/salon-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	defer suite.Cleanup(ctx)
	defer testutil.TerminateContainer(ctx)

	os.Exit(m.Run())
}

// setupDB creates an isolated schema for one test and returns the wrapped pool
func setupDB(t *testing.T, ctx context.Context, name string) *database.DB {
	t.Helper()
	testutil.SkipIfShort(t)
	schema := suite.SetupInventorySchema(t, ctx, name)
	return testutil.WrapSchemaDB(schema, suite.Logger)
}

// createStock inserts a ledger record with a status derived from its levels
func createStock(t *testing.T, ctx context.Context, repo *repository.StockRepository, branchID, productID string, current, min int) *domain.StockRecord {
	t.Helper()
	rec := &domain.StockRecord{
		BranchID:     branchID,
		ProductID:    productID,
		CurrentStock: current,
		MinStock:     min,
		MaxStock:     current * 2,
		Status:       domain.DeriveStockStatus(current, min),
		LastUpdated:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, rec))
	return rec
}

// createBatch inserts a batch built from a fixture
func createBatch(t *testing.T, ctx context.Context, repo *repository.BatchRepository, fixture testutil.BatchFixture) *domain.ProductBatch {
	t.Helper()
	batch := &domain.ProductBatch{
		BatchNumber:       fixture.BatchNumber,
		ProductID:         fixture.ProductID,
		BranchID:          fixture.BranchID,
		PurchaseOrderID:   fixture.PurchaseOrderID,
		Quantity:          fixture.Quantity,
		RemainingQuantity: fixture.RemainingQuantity,
		UnitCost:          fixture.UnitCost,
		ExpirationDate:    fixture.ExpirationDate,
		ReceivedDate:      fixture.ReceivedDate,
		ReceivedBy:        fixture.ReceivedBy,
		Status:            fixture.Status,
	}
	require.NoError(t, repo.Create(ctx, batch))
	return batch
}

func strPtr(s string) *string {
	return &s
}
