package service

import (
	"context"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/actor"
	"github.com/salonhq/salon-backend/pkg/errors"
)

// DeductStockInput carries one FIFO deduction request
type DeductStockInput struct {
	BranchID  string
	ProductID string
	Quantity  int
	Reason    string
	Notes     *string
}

// DeductionResult reports a committed FIFO deduction
type DeductionResult struct {
	StockRecord     *domain.StockRecord       `json:"stock_record"`
	BatchDeductions domain.BatchDeductionList `json:"batch_deductions"`
	MovementID      string                    `json:"movement_id"`
}

// DeductStockFIFO consumes stock batch by batch, soonest expiration first,
// and decrements the ledger to match. Everything happens in one
// transaction: if the active batches cannot cover the request, nothing is
// written and the error reports how many units were actually available.
//
// The ledger row and the candidate batch rows are locked for the duration
// of the transaction, so concurrent deductions against the same product
// serialize instead of double-allocating a batch.
func (s *InventoryService) DeductStockFIFO(ctx context.Context, in DeductStockInput) (*DeductionResult, error) {
	if in.Quantity <= 0 {
		return nil, errors.Validation(map[string]string{"quantity": "must be positive"})
	}

	var result *DeductionResult
	var rec *domain.StockRecord
	var movement *domain.InventoryMovement

	err := s.db.InTx(ctx, func(ctx context.Context) error {
		var err error

		// Lock order is always ledger row first, then batches, matching
		// the other stock mutations so concurrent writers cannot deadlock.
		rec, err = s.stockRepo.GetForUpdate(ctx, in.BranchID, in.ProductID)
		if err != nil {
			return err
		}

		batches, err := s.batchRepo.ActiveForUpdate(ctx, in.BranchID, in.ProductID)
		if err != nil {
			return err
		}

		plan, err := domain.PlanFIFODeduction(batches, in.Quantity)
		if err != nil {
			return err
		}

		for _, d := range plan {
			if err := s.batchRepo.ApplyDeduction(ctx, d.BatchID, d.Remaining); err != nil {
				return err
			}
		}

		previous := rec.CurrentStock
		newStock := previous - in.Quantity
		if newStock < 0 {
			newStock = 0
		}
		rec.CurrentStock = newStock
		rec.Status = domain.DeriveStockStatus(newStock, rec.MinStock)
		if err := s.stockRepo.UpdateStock(ctx, rec.ID, newStock, rec.Status, nil); err != nil {
			return err
		}

		movement = &domain.InventoryMovement{
			BranchID:        in.BranchID,
			ProductID:       in.ProductID,
			Type:            domain.MovementStockOut,
			Quantity:        in.Quantity,
			PreviousStock:   previous,
			NewStock:        newStock,
			Reason:          in.Reason,
			Notes:           in.Notes,
			BatchDeductions: plan,
			CreatedBy:       actor.IDFromContext(ctx),
		}
		if err := s.movementRepo.Create(ctx, movement); err != nil {
			return err
		}

		result = &DeductionResult{
			StockRecord:     rec,
			BatchDeductions: plan,
			MovementID:      movement.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("branch_id", in.BranchID).
		Str("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Int("batches_used", len(result.BatchDeductions)).
		Msg("stock deducted")

	s.publisher.PublishStockDeducted(ctx, rec, movement)
	s.alertIfLow(ctx, rec)
	return result, nil
}
