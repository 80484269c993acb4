package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/actor"
	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/salonhq/salon-backend/pkg/messaging"
)

// DeliveryItem is one line item of a confirmed purchase-order delivery
type DeliveryItem struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPrice      decimal.Decimal
	ExpirationDate *time.Time
}

// DeliveryInput carries one confirmed delivery
type DeliveryInput struct {
	PurchaseOrderID string
	BranchID        string
	Items           []DeliveryItem
	ReceivedBy      string
	ReceivedAt      time.Time
}

// CreateBatchesForDelivery turns a confirmed delivery into batches and
// ledger increments. For each usable line item it creates one active batch
// numbered {PO}-BATCH-{NNN} and adds the quantity to the stock ledger, all
// in a single transaction so batches and ledger cannot diverge.
//
// Items without a product ID or with a non-positive quantity are silently
// skipped; deliveries routinely carry placeholder rows. A usable item with
// no expiration date is a hard input error: the caller must collect dates
// before confirming the delivery.
func (s *InventoryService) CreateBatchesForDelivery(ctx context.Context, in DeliveryInput) ([]*domain.ProductBatch, error) {
	if in.PurchaseOrderID == "" || in.BranchID == "" {
		return nil, errors.Validation(map[string]string{"purchase_order_id": "purchase order and branch are required"})
	}

	usable := make([]DeliveryItem, 0, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			s.logger.Warn().
				Str("purchase_order_id", in.PurchaseOrderID).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("skipping invalid delivery item")
			continue
		}
		if item.ExpirationDate == nil {
			return nil, errors.BadRequest(
				fmt.Sprintf("missing expiration date for product %s in order %s", item.ProductID, in.PurchaseOrderID))
		}
		usable = append(usable, item)
	}

	if s.purchasing != nil {
		order, err := s.purchasing.GetOrder(ctx, in.PurchaseOrderID)
		switch {
		case err != nil:
			// Purchasing being unreachable must not block a physical delivery
			s.logger.Warn().Err(err).
				Str("purchase_order_id", in.PurchaseOrderID).
				Msg("could not verify purchase order, accepting delivery as sent")
		case order.BranchID != "" && order.BranchID != in.BranchID:
			return nil, errors.BadRequest(
				fmt.Sprintf("order %s belongs to branch %s, not %s", in.PurchaseOrderID, order.BranchID, in.BranchID))
		}
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	receivedBy := in.ReceivedBy
	if receivedBy == "" {
		receivedBy = actor.IDFromContext(ctx)
	}

	var created []*domain.ProductBatch
	var updatedRecords []*domain.StockRecord
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		// Continue the sequence when an order arrives in several deliveries
		offset, err := s.batchRepo.CountByPurchaseOrder(ctx, in.PurchaseOrderID)
		if err != nil {
			return err
		}

		created = make([]*domain.ProductBatch, 0, len(usable))
		for i, item := range usable {
			batch := &domain.ProductBatch{
				BatchNumber:       domain.FormatBatchNumber(in.PurchaseOrderID, offset+i+1),
				ProductID:         item.ProductID,
				BranchID:          in.BranchID,
				PurchaseOrderID:   in.PurchaseOrderID,
				Quantity:          item.Quantity,
				RemainingQuantity: item.Quantity,
				UnitCost:          item.UnitPrice,
				ExpirationDate:    item.ExpirationDate,
				ReceivedDate:      receivedAt,
				ReceivedBy:        receivedBy,
				Status:            domain.BatchStatusActive,
			}
			if err := s.batchRepo.Create(ctx, batch); err != nil {
				return err
			}
			created = append(created, batch)

			rec, err := s.addStockTx(ctx, AddStockInput{
				BranchID:        in.BranchID,
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				UnitCost:        item.UnitPrice,
				PurchaseOrderID: in.PurchaseOrderID,
				Reason:          "purchase order delivery",
			})
			if err != nil {
				return err
			}
			updatedRecords = append(updatedRecords, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("purchase_order_id", in.PurchaseOrderID).
		Str("branch_id", in.BranchID).
		Int("batches", len(created)).
		Msg("delivery received")

	for i, batch := range created {
		s.publisher.PublishStockReceived(ctx, updatedRecords[i], in.PurchaseOrderID, batch.Quantity, receivedBy)
	}

	return created, nil
}

// HandleOrderDelivered processes a delivery confirmation event from the
// purchasing service.
func (s *InventoryService) HandleOrderDelivered(ctx context.Context, evt messaging.OrderDeliveredEvent) error {
	items := make([]DeliveryItem, 0, len(evt.Items))
	for _, item := range evt.Items {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return errors.BadRequest(fmt.Sprintf("invalid unit price %q for product %s", item.UnitPrice, item.ProductID))
		}

		var expiry *time.Time
		if item.ExpirationDate != "" {
			parsed, err := time.Parse("2006-01-02", item.ExpirationDate)
			if err != nil {
				return errors.BadRequest(fmt.Sprintf("invalid expiration date %q for product %s", item.ExpirationDate, item.ProductID))
			}
			expiry = &parsed
		}

		items = append(items, DeliveryItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      unitPrice,
			ExpirationDate: expiry,
		})
	}

	_, err := s.CreateBatchesForDelivery(ctx, DeliveryInput{
		PurchaseOrderID: evt.PurchaseOrderID,
		BranchID:        evt.BranchID,
		Items:           items,
		ReceivedBy:      evt.ReceivedBy,
		ReceivedAt:      evt.ReceivedAt,
	})
	return err
}
