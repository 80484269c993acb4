package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/database"
	"github.com/salonhq/salon-backend/pkg/errors"
)

// StockRepository handles stock ledger persistence
type StockRepository struct {
	db *database.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *database.DB) *StockRepository {
	return &StockRepository{db: db}
}

// Create inserts a new stock record
func (r *StockRepository) Create(ctx context.Context, rec *domain.StockRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO stock_records (
			id, branch_id, product_id, current_stock, min_stock, max_stock,
			unit_cost, status, last_updated, last_restocked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.Q(ctx).QueryRowxContext(ctx, query,
		rec.ID, rec.BranchID, rec.ProductID, rec.CurrentStock, rec.MinStock,
		rec.MaxStock, rec.UnitCost, rec.Status, rec.LastUpdated, rec.LastRestocked,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// Get fetches the ledger record for one product at one branch
func (r *StockRepository) Get(ctx context.Context, branchID, productID string) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	query := `SELECT * FROM stock_records WHERE branch_id = $1 AND product_id = $2`
	if err := r.db.Q(ctx).GetContext(ctx, &rec, query, branchID, productID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("stock record")
		}
		return nil, err
	}
	return &rec, nil
}

// GetForUpdate fetches the ledger record with a row lock. Must be called
// inside a transaction; concurrent writers for the same (branch, product)
// serialize on this lock.
func (r *StockRepository) GetForUpdate(ctx context.Context, branchID, productID string) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	query := `SELECT * FROM stock_records WHERE branch_id = $1 AND product_id = $2 FOR UPDATE`
	if err := r.db.Q(ctx).GetContext(ctx, &rec, query, branchID, productID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("stock record")
		}
		return nil, err
	}
	return &rec, nil
}

// GetByID fetches a ledger record by its ID
func (r *StockRepository) GetByID(ctx context.Context, id string) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	query := `SELECT * FROM stock_records WHERE id = $1`
	if err := r.db.Q(ctx).GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("stock record")
		}
		return nil, err
	}
	return &rec, nil
}

// GetByIDForUpdate fetches a ledger record by ID with a row lock
func (r *StockRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	query := `SELECT * FROM stock_records WHERE id = $1 FOR UPDATE`
	if err := r.db.Q(ctx).GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("stock record")
		}
		return nil, err
	}
	return &rec, nil
}

// ListByBranch lists all ledger records for a branch, lowest stock first
func (r *StockRepository) ListByBranch(ctx context.Context, branchID string) ([]*domain.StockRecord, error) {
	records := make([]*domain.StockRecord, 0)
	query := `
		SELECT * FROM stock_records
		WHERE branch_id = $1
		ORDER BY current_stock, product_id
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &records, query, branchID); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStock writes a new stock level and derived status to the ledger.
// lastRestocked is only touched on stock-in, so it is passed separately.
func (r *StockRepository) UpdateStock(ctx context.Context, id string, currentStock int, status string, restockedAt *time.Time) error {
	query := `
		UPDATE stock_records SET
			current_stock = $2, status = $3, last_updated = NOW(),
			last_restocked = COALESCE($4, last_restocked)
		WHERE id = $1
	`
	result, err := r.db.Q(ctx).ExecContext(ctx, query, id, currentStock, status, restockedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stock record")
	}
	return nil
}

// UpdateOnReceipt writes the post-delivery stock level, derived status, and
// the latest purchase cost in one statement.
func (r *StockRepository) UpdateOnReceipt(ctx context.Context, id string, currentStock int, status string, unitCost decimal.Decimal, restockedAt time.Time) error {
	query := `
		UPDATE stock_records SET
			current_stock = $2, status = $3, unit_cost = $4,
			last_updated = NOW(), last_restocked = $5
		WHERE id = $1
	`
	result, err := r.db.Q(ctx).ExecContext(ctx, query, id, currentStock, status, unitCost, restockedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stock record")
	}
	return nil
}

// Update writes all mutable fields of a record
func (r *StockRepository) Update(ctx context.Context, rec *domain.StockRecord) error {
	query := `
		UPDATE stock_records SET
			current_stock = $2, min_stock = $3, max_stock = $4,
			unit_cost = $5, status = $6, last_updated = NOW()
		WHERE id = $1
	`
	result, err := r.db.Q(ctx).ExecContext(ctx, query,
		rec.ID, rec.CurrentStock, rec.MinStock, rec.MaxStock, rec.UnitCost, rec.Status,
	)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stock record")
	}
	return nil
}

// UpdateLevels updates the threshold and cost fields of a record
func (r *StockRepository) UpdateLevels(ctx context.Context, rec *domain.StockRecord) error {
	query := `
		UPDATE stock_records SET
			min_stock = $2, max_stock = $3, unit_cost = $4, status = $5,
			last_updated = NOW()
		WHERE id = $1
	`
	result, err := r.db.Q(ctx).ExecContext(ctx, query,
		rec.ID, rec.MinStock, rec.MaxStock, rec.UnitCost, rec.Status,
	)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stock record")
	}
	return nil
}

// CountByStatus returns how many records in a branch carry each status
func (r *StockRepository) CountByStatus(ctx context.Context, branchID string) (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	query := `
		SELECT status, COUNT(*) AS count FROM stock_records
		WHERE branch_id = $1
		GROUP BY status
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &rows, query, branchID); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Totals returns the number of tracked products and the summed stock for a branch
func (r *StockRepository) Totals(ctx context.Context, branchID string) (int, int, error) {
	var row struct {
		Products   int `db:"products"`
		TotalStock int `db:"total_stock"`
	}
	query := `
		SELECT COUNT(*) AS products, COALESCE(SUM(current_stock), 0) AS total_stock
		FROM stock_records
		WHERE branch_id = $1
	`
	if err := r.db.Q(ctx).GetContext(ctx, &row, query, branchID); err != nil {
		return 0, 0, err
	}
	return row.Products, row.TotalStock, nil
}

// ListLowStock lists records at or below their minimum threshold but not empty
func (r *StockRepository) ListLowStock(ctx context.Context, branchID string) ([]*domain.StockRecord, error) {
	records := make([]*domain.StockRecord, 0)
	query := `
		SELECT * FROM stock_records
		WHERE branch_id = $1 AND current_stock > 0 AND current_stock <= min_stock
		ORDER BY current_stock
	`
	if err := r.db.Q(ctx).SelectContext(ctx, &records, query, branchID); err != nil {
		return nil, err
	}
	return records, nil
}
