package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/database"
)

// MovementRepository handles the append-only movement log. There are no
// update or delete methods: movements are immutable once written.
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create appends a movement to the log
func (r *MovementRepository) Create(ctx context.Context, m *domain.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedBy == "" {
		m.CreatedBy = "system"
	}

	query := `
		INSERT INTO inventory_movements (
			id, branch_id, product_id, type, quantity, previous_stock,
			new_stock, reason, notes, batch_deductions, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.db.Q(ctx).QueryRowxContext(ctx, query,
		m.ID, m.BranchID, m.ProductID, m.Type, m.Quantity, m.PreviousStock,
		m.NewStock, m.Reason, m.Notes, m.BatchDeductions, m.CreatedBy,
	).Scan(&m.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// ListByProduct lists movements for a product at a branch, newest first
func (r *MovementRepository) ListByProduct(ctx context.Context, branchID, productID string, limit int) ([]*domain.InventoryMovement, error) {
	movements := make([]*domain.InventoryMovement, 0)
	query := `
		SELECT * FROM inventory_movements
		WHERE branch_id = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &movements, query, branchID, productID, limit); err != nil {
		return nil, err
	}
	return movements, nil
}

// ListByBranch lists movements for a branch, newest first
func (r *MovementRepository) ListByBranch(ctx context.Context, branchID string, limit int) ([]*domain.InventoryMovement, error) {
	movements := make([]*domain.InventoryMovement, 0)
	query := `
		SELECT * FROM inventory_movements
		WHERE branch_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &movements, query, branchID, limit); err != nil {
		return nil, err
	}
	return movements, nil
}
