package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Batch lifecycle states. A batch starts active, flips to expired when its
// expiration date passes, and becomes depleted when its remaining quantity
// reaches zero. Depleted is terminal: an already-consumed batch is never
// reclassified as expired.
const (
	BatchStatusActive   = "active"
	BatchStatusExpired  = "expired"
	BatchStatusDepleted = "depleted"
)

// Expiry classification values for display and filtering. These are computed
// from the date difference on demand and are independent of the stored batch
// status.
const (
	ExpiryNoExpiry     = "No Expiry"
	ExpiryExpired      = "Expired"
	ExpiryCritical     = "Critical"
	ExpiryExpiringSoon = "Expiring Soon"
	ExpiryGood         = "Good"
)

// ProductBatch is one received lot of a product at a branch. A nil
// ExpirationDate means permanent shelf life: the batch never expires and is
// drawn last by FIFO deduction.
type ProductBatch struct {
	ID                string          `db:"id" json:"id"`
	BatchNumber       string          `db:"batch_number" json:"batch_number"`
	ProductID         string          `db:"product_id" json:"product_id"`
	BranchID          string          `db:"branch_id" json:"branch_id"`
	PurchaseOrderID   string          `db:"purchase_order_id" json:"purchase_order_id"`
	Quantity          int             `db:"quantity" json:"quantity"`
	RemainingQuantity int             `db:"remaining_quantity" json:"remaining_quantity"`
	UnitCost          decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	ExpirationDate    *time.Time      `db:"expiration_date" json:"expiration_date,omitempty"`
	ReceivedDate      time.Time       `db:"received_date" json:"received_date"`
	ReceivedBy        string          `db:"received_by" json:"received_by"`
	Status            string          `db:"status" json:"status"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// FormatBatchNumber builds the batch number for the n-th line item of a
// delivery, e.g. "PO-2025-0001-BATCH-003".
func FormatBatchNumber(purchaseOrderID string, sequence int) string {
	return fmt.Sprintf("%s-BATCH-%03d", purchaseOrderID, sequence)
}

// truncateToDate drops the time-of-day component so expiry math compares
// calendar dates, not instants. A batch expiring today is not yet expired.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysUntilExpiry returns the whole number of calendar days from now until
// the expiration date. Negative means the date has passed. The boolean is
// false when the batch has no expiration date.
func DaysUntilExpiry(expirationDate *time.Time, now time.Time) (int, bool) {
	if expirationDate == nil {
		return 0, false
	}
	expiry := truncateToDate(*expirationDate)
	today := truncateToDate(now)
	return int(expiry.Sub(today).Hours() / 24), true
}

// ClassifyExpiry maps an expiration date to its display classification:
// No Expiry (nil date), Expired (date passed), Critical (within 7 days),
// Expiring Soon (8-30 days), Good (more than 30 days out).
func ClassifyExpiry(expirationDate *time.Time, now time.Time) string {
	days, ok := DaysUntilExpiry(expirationDate, now)
	if !ok {
		return ExpiryNoExpiry
	}
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= 7:
		return ExpiryCritical
	case days <= 30:
		return ExpiryExpiringSoon
	default:
		return ExpiryGood
	}
}

// IsExpired reports whether the batch's expiration date has passed as of now.
// Batches without an expiration date never expire.
func (b *ProductBatch) IsExpired(now time.Time) bool {
	days, ok := DaysUntilExpiry(b.ExpirationDate, now)
	return ok && days < 0
}

// ExpiryStatus returns the display classification for this batch
func (b *ProductBatch) ExpiryStatus(now time.Time) string {
	return ClassifyExpiry(b.ExpirationDate, now)
}
