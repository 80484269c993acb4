package domain

import (
	"sort"

	"github.com/salonhq/salon-backend/pkg/errors"
)

// SortBatchesFIFO orders batches for deduction: soonest expiration first,
// batches without an expiration date last (they are never urgent), ties
// broken by received date so older stock still moves first.
func SortBatchesFIFO(batches []*ProductBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch {
		case a.ExpirationDate == nil && b.ExpirationDate == nil:
			return a.ReceivedDate.Before(b.ReceivedDate)
		case a.ExpirationDate == nil:
			return false
		case b.ExpirationDate == nil:
			return true
		case !a.ExpirationDate.Equal(*b.ExpirationDate):
			return a.ExpirationDate.Before(*b.ExpirationDate)
		default:
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
	})
}

// PlanFIFODeduction walks batches in FIFO order and allocates the requested
// quantity across them, draining each batch before touching the next. It
// mutates nothing: the returned deduction list is a plan whose Remaining
// values reflect the state after the plan is applied.
//
// If the batches cannot cover the request, it returns an insufficient-stock
// error carrying the total actually available, and no plan.
func PlanFIFODeduction(batches []*ProductBatch, quantity int) (BatchDeductionList, error) {
	if quantity <= 0 {
		return nil, errors.BadRequest("deduction quantity must be positive")
	}

	ordered := make([]*ProductBatch, len(batches))
	copy(ordered, batches)
	SortBatchesFIFO(ordered)

	remaining := quantity
	plan := make(BatchDeductionList, 0, len(ordered))

	for _, batch := range ordered {
		if remaining == 0 {
			break
		}
		if batch.Status != BatchStatusActive || batch.RemainingQuantity <= 0 {
			continue
		}

		take := batch.RemainingQuantity
		if take > remaining {
			take = remaining
		}

		plan = append(plan, BatchDeduction{
			BatchID:     batch.ID,
			BatchNumber: batch.BatchNumber,
			Deducted:    take,
			Remaining:   batch.RemainingQuantity - take,
		})
		remaining -= take
	}

	if remaining > 0 {
		// Every active batch was drained, so what the plan holds is all
		// there was.
		return nil, errors.InsufficientStock(quantity-remaining, quantity)
	}

	return plan, nil
}
