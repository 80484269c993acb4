package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock status values derived from current stock vs. the minimum threshold
const (
	StockStatusInStock    = "In Stock"
	StockStatusLowStock   = "Low Stock"
	StockStatusOutOfStock = "Out of Stock"
)

// StockRecord is the ledger entry for one product at one branch. There is
// exactly one record per (branch, product) pair; batch-level detail lives in
// ProductBatch.
type StockRecord struct {
	ID            string          `db:"id" json:"id"`
	BranchID      string          `db:"branch_id" json:"branch_id"`
	ProductID     string          `db:"product_id" json:"product_id"`
	CurrentStock  int             `db:"current_stock" json:"current_stock"`
	MinStock      int             `db:"min_stock" json:"min_stock"`
	MaxStock      int             `db:"max_stock" json:"max_stock"`
	UnitCost      decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Status        string          `db:"status" json:"status"`
	LastUpdated   time.Time       `db:"last_updated" json:"last_updated"`
	LastRestocked *time.Time      `db:"last_restocked" json:"last_restocked,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// DeriveStockStatus computes the ledger status from current stock and the
// minimum threshold. Zero is always Out of Stock, even when minStock is zero.
func DeriveStockStatus(currentStock, minStock int) string {
	switch {
	case currentStock <= 0:
		return StockStatusOutOfStock
	case currentStock <= minStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// IsLowStock reports whether the record should trigger a low-stock alert
func (r *StockRecord) IsLowStock() bool {
	return r.CurrentStock > 0 && r.CurrentStock <= r.MinStock
}
