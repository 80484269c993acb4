package events

import (
	"context"
	"time"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
	"github.com/salonhq/salon-backend/pkg/logger"
	"github.com/salonhq/salon-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events. A nil
// publisher is safe to call; events are simply dropped, which keeps the
// service usable without a broker in tests and local tooling.
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishStockReceived publishes a stock received event after a delivery
func (p *InventoryEventPublisher) PublishStockReceived(ctx context.Context, rec *domain.StockRecord, purchaseOrderID string, quantity int, receivedBy string) {
	if p == nil {
		return
	}

	data := messaging.StockReceivedEvent{
		BranchID:        rec.BranchID,
		ProductID:       rec.ProductID,
		PurchaseOrderID: purchaseOrderID,
		Quantity:        quantity,
		NewStock:        rec.CurrentStock,
		ReceivedBy:      receivedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockReceived, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", rec.ProductID).Msg("failed to publish stock received event")
	}
}

// PublishStockDeducted publishes a stock deducted event after a FIFO deduction
func (p *InventoryEventPublisher) PublishStockDeducted(ctx context.Context, rec *domain.StockRecord, movement *domain.InventoryMovement) {
	if p == nil {
		return
	}

	data := messaging.StockDeductedEvent{
		BranchID:   rec.BranchID,
		ProductID:  rec.ProductID,
		Quantity:   movement.Quantity,
		NewStock:   rec.CurrentStock,
		Reason:     movement.Reason,
		MovementID: movement.ID,
		DeductedBy: movement.CreatedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockDeducted, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", rec.ProductID).Msg("failed to publish stock deducted event")
	}
}

// PublishStockReduced publishes a stock reduced event after a direct decrement
func (p *InventoryEventPublisher) PublishStockReduced(ctx context.Context, rec *domain.StockRecord, movement *domain.InventoryMovement) {
	if p == nil {
		return
	}

	data := messaging.StockReducedEvent{
		BranchID:  rec.BranchID,
		ProductID: rec.ProductID,
		Quantity:  movement.Quantity,
		NewStock:  rec.CurrentStock,
		Reason:    movement.Reason,
		ReducedBy: movement.CreatedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockReduced, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", rec.ProductID).Msg("failed to publish stock reduced event")
	}
}

// PublishStockLow publishes a low stock alert event
func (p *InventoryEventPublisher) PublishStockLow(ctx context.Context, rec *domain.StockRecord) {
	if p == nil {
		return
	}

	data := messaging.StockLowEvent{
		BranchID:     rec.BranchID,
		ProductID:    rec.ProductID,
		CurrentStock: rec.CurrentStock,
		MinStock:     rec.MinStock,
		Status:       rec.Status,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockLow, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", rec.ProductID).Msg("failed to publish stock low event")
	}
}

// PublishBatchExpired publishes a batch expired event from the sweep
func (p *InventoryEventPublisher) PublishBatchExpired(ctx context.Context, batch *domain.ProductBatch) {
	if p == nil || batch.ExpirationDate == nil {
		return
	}

	data := messaging.BatchExpiredEvent{
		BranchID:          batch.BranchID,
		ProductID:         batch.ProductID,
		BatchID:           batch.ID,
		BatchNumber:       batch.BatchNumber,
		ExpirationDate:    *batch.ExpirationDate,
		RemainingQuantity: batch.RemainingQuantity,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchExpired, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("failed to publish batch expired event")
	}
}

// PublishBatchExpiring publishes a batch expiring event for batches nearing
// their expiration date
func (p *InventoryEventPublisher) PublishBatchExpiring(ctx context.Context, batch *domain.ProductBatch, now time.Time) {
	if p == nil || batch.ExpirationDate == nil {
		return
	}

	days, _ := domain.DaysUntilExpiry(batch.ExpirationDate, now)
	data := messaging.BatchExpiringEvent{
		BranchID:       batch.BranchID,
		ProductID:      batch.ProductID,
		BatchID:        batch.ID,
		BatchNumber:    batch.BatchNumber,
		ExpirationDate: *batch.ExpirationDate,
		DaysUntil:      days,
		Quantity:       batch.RemainingQuantity,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchExpiring, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("failed to publish batch expiring event")
	}
}
