package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/database"
	"github.com/salonhq/salon-backend/pkg/errors"
)

// fifoOrder sorts batches for deduction: soonest expiration first, undated
// batches last, older deliveries before newer on ties. Must stay in sync
// with domain.SortBatchesFIFO.
const fifoOrder = `ORDER BY (expiration_date IS NULL), expiration_date, received_date, batch_number`

// BatchRepository handles product batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a single batch
func (r *BatchRepository) Create(ctx context.Context, batch *domain.ProductBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	query := `
		INSERT INTO product_batches (
			id, batch_number, product_id, branch_id, purchase_order_id,
			quantity, remaining_quantity, unit_cost, expiration_date,
			received_date, received_by, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.Q(ctx).QueryRowxContext(ctx, query,
		batch.ID, batch.BatchNumber, batch.ProductID, batch.BranchID,
		batch.PurchaseOrderID, batch.Quantity, batch.RemainingQuantity,
		batch.UnitCost, batch.ExpirationDate, batch.ReceivedDate,
		batch.ReceivedBy, batch.Status,
	).Scan(&batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// CreateMany inserts all batches of one delivery. Callers wrap this in a
// transaction so the delivery lands atomically.
func (r *BatchRepository) CreateMany(ctx context.Context, batches []*domain.ProductBatch) error {
	for _, batch := range batches {
		if err := r.Create(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// GetByID gets a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.ProductBatch, error) {
	var batch domain.ProductBatch
	query := `SELECT * FROM product_batches WHERE id = $1`
	if err := r.db.Q(ctx).GetContext(ctx, &batch, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, err
	}
	return &batch, nil
}

// List lists batches at a branch in FIFO order, optionally filtered by
// product and status. Empty filter values match everything.
func (r *BatchRepository) List(ctx context.Context, branchID, productID, status string) ([]*domain.ProductBatch, error) {
	batches := make([]*domain.ProductBatch, 0)

	query := `SELECT * FROM product_batches WHERE branch_id = $1`
	args := []interface{}{branchID}
	if productID != "" {
		args = append(args, productID)
		query += fmt.Sprintf(` AND product_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ` + fifoOrder

	if err := r.db.Q(ctx).SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, err
	}
	return batches, nil
}

// ActiveForUpdate fetches the deductible batches of a product with row
// locks, in FIFO order. Must run inside a transaction: the locks serialize
// concurrent deductions against the same product so two callers cannot
// allocate the same units.
func (r *BatchRepository) ActiveForUpdate(ctx context.Context, branchID, productID string) ([]*domain.ProductBatch, error) {
	batches := make([]*domain.ProductBatch, 0)
	query := `
		SELECT * FROM product_batches
		WHERE branch_id = $1 AND product_id = $2
		  AND status = 'active' AND remaining_quantity > 0
		` + fifoOrder + `
		FOR UPDATE
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &batches, query, branchID, productID); err != nil {
		return nil, err
	}
	return batches, nil
}

// ApplyDeduction writes a batch's new remaining quantity, flipping it to
// depleted when it hits zero.
func (r *BatchRepository) ApplyDeduction(ctx context.Context, batchID string, newRemaining int) error {
	status := domain.BatchStatusActive
	if newRemaining == 0 {
		status = domain.BatchStatusDepleted
	}

	query := `
		UPDATE product_batches SET
			remaining_quantity = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.Q(ctx).ExecContext(ctx, query, batchID, newRemaining, status)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}
	return nil
}

// ExpireDue flips active batches whose expiration date has passed to
// expired, leaving their remaining quantities untouched. Depleted batches
// are never reclassified. An empty branchID sweeps every branch. Returns
// the batches that were flipped, so callers can report and publish them.
func (r *BatchRepository) ExpireDue(ctx context.Context, branchID string, asOf time.Time) ([]*domain.ProductBatch, error) {
	flipped := make([]*domain.ProductBatch, 0)

	query := `
		UPDATE product_batches SET
			status = 'expired', updated_at = NOW()
		WHERE status = 'active'
		  AND expiration_date IS NOT NULL
		  AND expiration_date < $1::date
	`
	args := []interface{}{asOf}
	if branchID != "" {
		query += ` AND branch_id = $2`
		args = append(args, branchID)
	}
	query += ` RETURNING *`

	if err := r.db.Q(ctx).SelectContext(ctx, &flipped, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}
	return flipped, nil
}

// Expiring lists active batches expiring within the given number of days,
// soonest first. Batches without an expiration date are never included. An
// empty branchID spans all branches.
func (r *BatchRepository) Expiring(ctx context.Context, branchID string, withinDays int) ([]*domain.ProductBatch, error) {
	batches := make([]*domain.ProductBatch, 0)

	query := `
		SELECT * FROM product_batches
		WHERE status = 'active' AND remaining_quantity > 0
		  AND expiration_date IS NOT NULL
		  AND expiration_date >= CURRENT_DATE
		  AND expiration_date <= CURRENT_DATE + $1::int
	`
	args := []interface{}{withinDays}
	if branchID != "" {
		query += ` AND branch_id = $2`
		args = append(args, branchID)
	}
	query += ` ORDER BY expiration_date, batch_number`

	if err := r.db.Q(ctx).SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, err
	}
	return batches, nil
}

// Expired lists batches at a branch already marked expired, most recently
// expired first.
func (r *BatchRepository) Expired(ctx context.Context, branchID string) ([]*domain.ProductBatch, error) {
	batches := make([]*domain.ProductBatch, 0)
	query := `
		SELECT * FROM product_batches
		WHERE branch_id = $1 AND status = 'expired'
		ORDER BY expiration_date DESC, batch_number
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &batches, query, branchID); err != nil {
		return nil, err
	}
	return batches, nil
}

// CountByPurchaseOrder returns how many batches already exist for a
// purchase order, used to continue the batch number sequence when a
// delivery arrives in parts.
func (r *BatchRepository) CountByPurchaseOrder(ctx context.Context, purchaseOrderID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM product_batches WHERE purchase_order_id = $1`
	if err := r.db.Q(ctx).GetContext(ctx, &count, query, purchaseOrderID); err != nil {
		return 0, err
	}
	return count, nil
}
