package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Movement types. The log only distinguishes direction; the reason field
// carries the business context (delivery, sale, manual adjustment, ...).
const (
	MovementStockIn  = "stock_in"
	MovementStockOut = "stock_out"
)

// BatchDeduction records how much one FIFO deduction drew from one batch.
// Remaining is the batch's remaining quantity after the draw.
type BatchDeduction struct {
	BatchID     string `json:"batch_id"`
	BatchNumber string `json:"batch_number"`
	Deducted    int    `json:"deducted"`
	Remaining   int    `json:"remaining"`
}

// BatchDeductionList is stored as a JSONB column on movements
type BatchDeductionList []BatchDeduction

// Value implements driver.Valuer for JSONB storage
func (l BatchDeductionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *BatchDeductionList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into BatchDeductionList", src)
	}
}

// Total returns the sum of units drawn across all batches
func (l BatchDeductionList) Total() int {
	total := 0
	for _, d := range l {
		total += d.Deducted
	}
	return total
}

// InventoryMovement is one immutable entry in the append-only stock audit
// log. PreviousStock and NewStock snapshot the ledger around the event;
// BatchDeductions is only set for FIFO-driven stock-outs.
type InventoryMovement struct {
	ID              string             `db:"id" json:"id"`
	BranchID        string             `db:"branch_id" json:"branch_id"`
	ProductID       string             `db:"product_id" json:"product_id"`
	Type            string             `db:"type" json:"type"`
	Quantity        int                `db:"quantity" json:"quantity"`
	PreviousStock   int                `db:"previous_stock" json:"previous_stock"`
	NewStock        int                `db:"new_stock" json:"new_stock"`
	Reason          string             `db:"reason" json:"reason"`
	Notes           *string            `db:"notes" json:"notes,omitempty"`
	BatchDeductions BatchDeductionList `db:"batch_deductions" json:"batch_deductions,omitempty"`
	CreatedBy       string             `db:"created_by" json:"created_by"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}
