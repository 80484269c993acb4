package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecordFixture represents test stock ledger data
type StockRecordFixture struct {
	ID           string
	BranchID     string
	ProductID    string
	CurrentStock int
	MinStock     int
	MaxStock     int
	UnitCost     decimal.Decimal
	Status       string
	CreatedAt    time.Time
}

// BatchFixture represents test product batch data
type BatchFixture struct {
	ID                string
	BatchNumber       string
	ProductID         string
	BranchID          string
	PurchaseOrderID   string
	Quantity          int
	RemainingQuantity int
	UnitCost          decimal.Decimal
	ExpirationDate    *time.Time
	ReceivedDate      time.Time
	ReceivedBy        string
	Status            string
}

// DeliveryItemFixture represents one line item of a test delivery
type DeliveryItemFixture struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPrice      decimal.Decimal
	ExpirationDate time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// StockRecord creates a stock record fixture with defaults
func (f *FixtureFactory) StockRecord(opts ...func(*StockRecordFixture)) StockRecordFixture {
	seq := f.nextSeq()

	rec := StockRecordFixture{
		ID:           uuid.New().String(),
		BranchID:     uuid.New().String(),
		ProductID:    fmt.Sprintf("product-%04d", seq),
		CurrentStock: 50,
		MinStock:     10,
		MaxStock:     200,
		UnitCost:     decimal.NewFromFloat(12.50),
		Status:       "In Stock",
		CreatedAt:    time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(&rec)
	}

	return rec
}

// WithBranch sets the branch ID
func WithBranch(branchID string) func(*StockRecordFixture) {
	return func(r *StockRecordFixture) {
		r.BranchID = branchID
	}
}

// WithProduct sets the product ID
func WithProduct(productID string) func(*StockRecordFixture) {
	return func(r *StockRecordFixture) {
		r.ProductID = productID
	}
}

// WithStock sets the current stock and thresholds
func WithStock(current, min, max int) func(*StockRecordFixture) {
	return func(r *StockRecordFixture) {
		r.CurrentStock = current
		r.MinStock = min
		r.MaxStock = max
	}
}

// Batch creates a batch fixture with defaults. The batch expires in 90 days
// unless overridden.
func (f *FixtureFactory) Batch(opts ...func(*BatchFixture)) BatchFixture {
	seq := f.nextSeq()
	expiry := time.Now().UTC().AddDate(0, 0, 90).Truncate(24 * time.Hour)
	poID := fmt.Sprintf("PO-2025-%04d", seq)

	batch := BatchFixture{
		ID:                uuid.New().String(),
		BatchNumber:       fmt.Sprintf("%s-BATCH-001", poID),
		ProductID:         fmt.Sprintf("product-%04d", seq),
		BranchID:          uuid.New().String(),
		PurchaseOrderID:   poID,
		Quantity:          100,
		RemainingQuantity: 100,
		UnitCost:          decimal.NewFromFloat(8.75),
		ExpirationDate:    &expiry,
		ReceivedDate:      time.Now().UTC(),
		ReceivedBy:        "test-user",
		Status:            "active",
	}

	for _, opt := range opts {
		opt(&batch)
	}

	return batch
}

// WithBatchBranchProduct sets the branch and product IDs
func WithBatchBranchProduct(branchID, productID string) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.BranchID = branchID
		b.ProductID = productID
	}
}

// WithQuantities sets the original and remaining quantities
func WithQuantities(quantity, remaining int) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.Quantity = quantity
		b.RemainingQuantity = remaining
	}
}

// WithExpiration sets the expiration date
func WithExpiration(date time.Time) func(*BatchFixture) {
	return func(b *BatchFixture) {
		truncated := date.Truncate(24 * time.Hour)
		b.ExpirationDate = &truncated
	}
}

// WithExpirationIn sets the expiration date relative to today
func WithExpirationIn(days int) func(*BatchFixture) {
	return WithExpiration(time.Now().UTC().AddDate(0, 0, days))
}

// WithoutExpiration clears the expiration date (permanent-shelf-life batch)
func WithoutExpiration() func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.ExpirationDate = nil
	}
}

// WithBatchStatus sets the batch status
func WithBatchStatus(status string) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.Status = status
	}
}

// DeliveryItem creates a delivery line item fixture with defaults
func (f *FixtureFactory) DeliveryItem(opts ...func(*DeliveryItemFixture)) DeliveryItemFixture {
	seq := f.nextSeq()

	item := DeliveryItemFixture{
		ProductID:      fmt.Sprintf("product-%04d", seq),
		ProductName:    fmt.Sprintf("Test Product %d", seq),
		Quantity:       25,
		UnitPrice:      decimal.NewFromFloat(5.25),
		ExpirationDate: time.Now().UTC().AddDate(0, 0, 180).Truncate(24 * time.Hour),
	}

	for _, opt := range opts {
		opt(&item)
	}

	return item
}
