package domain_test

import (
	"testing"
	"time"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeBatch(id string, remaining int, expiry *time.Time, received time.Time) *domain.ProductBatch {
	return &domain.ProductBatch{
		ID:                id,
		BatchNumber:       id + "-number",
		Quantity:          remaining,
		RemainingQuantity: remaining,
		ExpirationDate:    expiry,
		ReceivedDate:      received,
		Status:            domain.BatchStatusActive,
	}
}

func TestPlanFIFODeduction_OldestExpirationFirst(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	b1 := activeBatch("b1", 10, datePtr(now.AddDate(0, 0, 5)), now)
	b2 := activeBatch("b2", 10, datePtr(now.AddDate(0, 0, 20)), now)
	b3 := activeBatch("b3", 10, nil, now)

	// Deliberately shuffled input: ordering must come from the planner
	plan, err := domain.PlanFIFODeduction([]*domain.ProductBatch{b3, b2, b1}, 15)
	require.NoError(t, err)

	require.Len(t, plan, 2)
	assert.Equal(t, "b1", plan[0].BatchID)
	assert.Equal(t, 10, plan[0].Deducted)
	assert.Equal(t, 0, plan[0].Remaining)
	assert.Equal(t, "b2", plan[1].BatchID)
	assert.Equal(t, 5, plan[1].Deducted)
	assert.Equal(t, 5, plan[1].Remaining)
	assert.Equal(t, 15, plan.Total())
}

func TestPlanFIFODeduction_NoExpiryDrawnLast(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	noExpiry := activeBatch("permanent", 50, nil, now.AddDate(0, 0, -30))
	expiring := activeBatch("expiring", 5, datePtr(now.AddDate(0, 0, 60)), now)

	plan, err := domain.PlanFIFODeduction([]*domain.ProductBatch{noExpiry, expiring}, 10)
	require.NoError(t, err)

	require.Len(t, plan, 2)
	assert.Equal(t, "expiring", plan[0].BatchID, "dated batch drains before permanent stock")
	assert.Equal(t, "permanent", plan[1].BatchID)
	assert.Equal(t, 5, plan[1].Deducted)
}

func TestPlanFIFODeduction_TieBrokenByReceivedDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	expiry := datePtr(now.AddDate(0, 0, 10))

	older := activeBatch("older", 10, expiry, now.AddDate(0, 0, -5))
	newer := activeBatch("newer", 10, expiry, now)

	plan, err := domain.PlanFIFODeduction([]*domain.ProductBatch{newer, older}, 12)
	require.NoError(t, err)

	require.Len(t, plan, 2)
	assert.Equal(t, "older", plan[0].BatchID)
	assert.Equal(t, "newer", plan[1].BatchID)
}

func TestPlanFIFODeduction_SkipsInactiveAndEmptyBatches(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	expired := activeBatch("expired", 10, datePtr(now.AddDate(0, 0, -1)), now)
	expired.Status = domain.BatchStatusExpired
	depleted := activeBatch("depleted", 0, datePtr(now.AddDate(0, 0, 5)), now)
	depleted.Status = domain.BatchStatusDepleted
	drained := activeBatch("drained", 0, datePtr(now.AddDate(0, 0, 5)), now)
	usable := activeBatch("usable", 20, datePtr(now.AddDate(0, 0, 10)), now)

	plan, err := domain.PlanFIFODeduction([]*domain.ProductBatch{expired, depleted, drained, usable}, 15)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, "usable", plan[0].BatchID)
	assert.Equal(t, 15, plan[0].Deducted)
	assert.Equal(t, 5, plan[0].Remaining)
}

func TestPlanFIFODeduction_InsufficientStock(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	b1 := activeBatch("b1", 10, datePtr(now.AddDate(0, 0, 5)), now)
	b2 := activeBatch("b2", 7, datePtr(now.AddDate(0, 0, 20)), now)

	plan, err := domain.PlanFIFODeduction([]*domain.ProductBatch{b1, b2}, 25)
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInsufficientStock)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "17", appErr.Details["available"])
	assert.Equal(t, "25", appErr.Details["requested"])
}

func TestPlanFIFODeduction_NoBatches(t *testing.T) {
	plan, err := domain.PlanFIFODeduction(nil, 5)
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInsufficientStock)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "0", appErr.Details["available"])
}

func TestPlanFIFODeduction_RejectsNonPositiveQuantity(t *testing.T) {
	_, err := domain.PlanFIFODeduction(nil, 0)
	assert.ErrorIs(t, err, errors.ErrBadRequest)

	_, err = domain.PlanFIFODeduction(nil, -3)
	assert.ErrorIs(t, err, errors.ErrBadRequest)
}

func TestPlanFIFODeduction_ExactDrain(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	b1 := activeBatch("b1", 10, datePtr(now.AddDate(0, 0, 5)), now)

	plan, err := domain.PlanFIFODeduction([]*domain.ProductBatch{b1}, 10)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 0, plan[0].Remaining)

	// The plan never mutates its inputs
	assert.Equal(t, 10, b1.RemainingQuantity)
}
