package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/client"
	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/internal/inventory/events"
	"github.com/salonhq/salon-backend/internal/inventory/repository"
	"github.com/salonhq/salon-backend/pkg/actor"
	"github.com/salonhq/salon-backend/pkg/database"
	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/salonhq/salon-backend/pkg/logger"
)

// InventoryService handles the stock ledger, batch store, and movement log
type InventoryService struct {
	db               *database.DB
	stockRepo        *repository.StockRepository
	batchRepo        *repository.BatchRepository
	movementRepo     *repository.MovementRepository
	catalog          *client.CatalogClient
	purchasing       *client.PurchasingClient
	publisher        *events.InventoryEventPublisher
	expiringSoonDays int
	logger           *logger.Logger
}

// WithPurchasingClient enables purchase-order cross-checks on deliveries.
// Without it deliveries are accepted as sent.
func (s *InventoryService) WithPurchasingClient(pc *client.PurchasingClient) *InventoryService {
	s.purchasing = pc
	return s
}

// NewInventoryService creates a new inventory service. catalog and publisher
// may be nil; enrichment and events degrade gracefully without them.
func NewInventoryService(
	db *database.DB,
	stockRepo *repository.StockRepository,
	batchRepo *repository.BatchRepository,
	movementRepo *repository.MovementRepository,
	catalog *client.CatalogClient,
	publisher *events.InventoryEventPublisher,
	expiringSoonDays int,
	log *logger.Logger,
) *InventoryService {
	if expiringSoonDays <= 0 {
		expiringSoonDays = 30
	}
	return &InventoryService{
		db:               db,
		stockRepo:        stockRepo,
		batchRepo:        batchRepo,
		movementRepo:     movementRepo,
		catalog:          catalog,
		publisher:        publisher,
		expiringSoonDays: expiringSoonDays,
		logger:           log,
	}
}

// AddStockInput carries one stock-in mutation
type AddStockInput struct {
	BranchID        string
	ProductID       string
	Quantity        int
	UnitCost        decimal.Decimal
	MinStock        *int
	MaxStock        *int
	PurchaseOrderID string
	Reason          string
	Notes           *string
}

// AddStock increments the ledger for (branch, product), creating the record
// on first receipt, and appends a stock_in movement. The ledger write and
// the movement are one transaction.
func (s *InventoryService) AddStock(ctx context.Context, in AddStockInput) (*domain.StockRecord, error) {
	if in.Quantity <= 0 {
		return nil, errors.Validation(map[string]string{"quantity": "must be positive"})
	}

	var rec *domain.StockRecord
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.addStockTx(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("branch_id", in.BranchID).
		Str("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Int("new_stock", rec.CurrentStock).
		Msg("stock added")

	s.publisher.PublishStockReceived(ctx, rec, in.PurchaseOrderID, in.Quantity, actor.IDFromContext(ctx))
	return rec, nil
}

// addStockTx performs the ledger increment and movement append. It must run
// inside a transaction; the delivery pipeline calls it once per line item
// within the delivery's own transaction.
func (s *InventoryService) addStockTx(ctx context.Context, in AddStockInput) (*domain.StockRecord, error) {
	now := time.Now().UTC()
	reason := in.Reason
	if reason == "" {
		reason = "stock received"
	}

	rec, err := s.stockRepo.GetForUpdate(ctx, in.BranchID, in.ProductID)
	switch {
	case err == nil:
		rec.CurrentStock += in.Quantity
		rec.Status = domain.DeriveStockStatus(rec.CurrentStock, rec.MinStock)
		if !in.UnitCost.IsZero() {
			rec.UnitCost = in.UnitCost
		}
		if err := s.stockRepo.UpdateOnReceipt(ctx, rec.ID, rec.CurrentStock, rec.Status, rec.UnitCost, now); err != nil {
			return nil, err
		}
	case errors.Is(err, errors.ErrNotFound):
		rec = &domain.StockRecord{
			BranchID:      in.BranchID,
			ProductID:     in.ProductID,
			CurrentStock:  in.Quantity,
			UnitCost:      in.UnitCost,
			LastUpdated:   now,
			LastRestocked: &now,
		}
		if in.MinStock != nil {
			rec.MinStock = *in.MinStock
		}
		if in.MaxStock != nil {
			rec.MaxStock = *in.MaxStock
		}
		rec.Status = domain.DeriveStockStatus(rec.CurrentStock, rec.MinStock)
		if err := s.stockRepo.Create(ctx, rec); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	movement := &domain.InventoryMovement{
		BranchID:      in.BranchID,
		ProductID:     in.ProductID,
		Type:          domain.MovementStockIn,
		Quantity:      in.Quantity,
		PreviousStock: rec.CurrentStock - in.Quantity,
		NewStock:      rec.CurrentStock,
		Reason:        reason,
		Notes:         in.Notes,
		CreatedBy:     actor.IDFromContext(ctx),
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, err
	}

	return rec, nil
}

// ReduceStockInput carries one direct ledger decrement
type ReduceStockInput struct {
	BranchID  string
	ProductID string
	Quantity  int
	Reason    string
	Notes     *string
}

// ReduceStock decrements the ledger without batch bookkeeping, clamping at
// zero rather than rejecting over-deduction. Callers that need batch-level
// accuracy and hard failure on shortage use DeductStockFIFO instead.
func (s *InventoryService) ReduceStock(ctx context.Context, in ReduceStockInput) (*domain.StockRecord, error) {
	if in.Quantity <= 0 {
		return nil, errors.Validation(map[string]string{"quantity": "must be positive"})
	}

	var rec *domain.StockRecord
	var movement *domain.InventoryMovement

	err := s.db.InTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.stockRepo.GetForUpdate(ctx, in.BranchID, in.ProductID)
		if err != nil {
			return err
		}

		previous := rec.CurrentStock
		newStock := previous - in.Quantity
		if newStock < 0 {
			s.logger.Warn().
				Str("branch_id", in.BranchID).
				Str("product_id", in.ProductID).
				Int("requested", in.Quantity).
				Int("available", previous).
				Msg("stock reduction clamped at zero")
			newStock = 0
		}

		rec.CurrentStock = newStock
		rec.Status = domain.DeriveStockStatus(newStock, rec.MinStock)
		if err := s.stockRepo.UpdateStock(ctx, rec.ID, newStock, rec.Status, nil); err != nil {
			return err
		}

		movement = &domain.InventoryMovement{
			BranchID:      in.BranchID,
			ProductID:     in.ProductID,
			Type:          domain.MovementStockOut,
			Quantity:      previous - newStock,
			PreviousStock: previous,
			NewStock:      newStock,
			Reason:        in.Reason,
			Notes:         in.Notes,
			CreatedBy:     actor.IDFromContext(ctx),
		}
		return s.movementRepo.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishStockReduced(ctx, rec, movement)
	s.alertIfLow(ctx, rec)
	return rec, nil
}

// UpdateStockInput patches threshold, cost, and stock fields of a record.
// Nil fields keep their stored values.
type UpdateStockInput struct {
	CurrentStock *int
	MinStock     *int
	MaxStock     *int
	UnitCost     *decimal.Decimal
}

// UpdateStock patches a ledger record by ID. Status is recomputed from the
// resulting values whenever currentStock or minStock is part of the patch.
// No movement is written: this is an administrative correction, not a stock
// event.
func (s *InventoryService) UpdateStock(ctx context.Context, stockID string, in UpdateStockInput) (*domain.StockRecord, error) {
	if in.CurrentStock != nil && *in.CurrentStock < 0 {
		return nil, errors.Validation(map[string]string{"current_stock": "must not be negative"})
	}
	if in.MinStock != nil && *in.MinStock < 0 {
		return nil, errors.Validation(map[string]string{"min_stock": "must not be negative"})
	}

	var rec *domain.StockRecord
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.stockRepo.GetByIDForUpdate(ctx, stockID)
		if err != nil {
			return err
		}

		if in.CurrentStock != nil {
			rec.CurrentStock = *in.CurrentStock
		}
		if in.MinStock != nil {
			rec.MinStock = *in.MinStock
		}
		if in.MaxStock != nil {
			rec.MaxStock = *in.MaxStock
		}
		if in.UnitCost != nil {
			rec.UnitCost = *in.UnitCost
		}
		rec.Status = domain.DeriveStockStatus(rec.CurrentStock, rec.MinStock)

		return s.stockRepo.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// StockWithProduct is a ledger record enriched with catalog data
type StockWithProduct struct {
	*domain.StockRecord
	ProductName string `json:"product_name,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
}

// GetBranchStocks lists a branch's ledger, optionally filtered by status
// and catalog category. Catalog enrichment is best-effort: when the catalog
// service is unreachable the bare records are returned (and the category
// filter matches nothing).
func (s *InventoryService) GetBranchStocks(ctx context.Context, branchID, status, category string) ([]*StockWithProduct, error) {
	records, err := s.stockRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if status != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Status == status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	products := s.lookupProducts(ctx, records)

	result := make([]*StockWithProduct, 0, len(records))
	for _, rec := range records {
		enriched := &StockWithProduct{StockRecord: rec}
		if p, ok := products[rec.ProductID]; ok {
			enriched.ProductName = p.Name
			enriched.Brand = p.Brand
			enriched.Category = p.Category
		}
		if category != "" && enriched.Category != category {
			continue
		}
		result = append(result, enriched)
	}

	return result, nil
}

// lookupProducts fetches catalog data for the given records, best-effort
func (s *InventoryService) lookupProducts(ctx context.Context, records []*domain.StockRecord) map[string]*client.Product {
	if s.catalog == nil || len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ProductID
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog lookup failed, returning unenriched stocks")
		return nil
	}
	return products
}

// GetMovements lists the movement log for a branch, optionally narrowed to
// one product, newest first.
func (s *InventoryService) GetMovements(ctx context.Context, branchID, productID string, limit int) ([]*domain.InventoryMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if productID != "" {
		return s.movementRepo.ListByProduct(ctx, branchID, productID, limit)
	}
	return s.movementRepo.ListByBranch(ctx, branchID, limit)
}

// alertIfLow publishes a low stock event when the record sits at or below
// its minimum threshold, including when it just hit zero.
func (s *InventoryService) alertIfLow(ctx context.Context, rec *domain.StockRecord) {
	if rec.CurrentStock <= rec.MinStock {
		s.publisher.PublishStockLow(ctx, rec)
	}
}
