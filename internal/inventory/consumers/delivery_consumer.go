package consumers

import (
	"context"

	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/logger"
	"github.com/salonhq/salon-backend/pkg/messaging"
)

// DeliveryEventConsumer consumes delivery confirmations from the purchasing
// service and feeds them into the batch pipeline.
type DeliveryEventConsumer struct {
	consumer *messaging.Consumer
	service  *service.InventoryService
	logger   *logger.Logger
}

// NewDeliveryEventConsumer creates a new delivery event consumer
func NewDeliveryEventConsumer(rmq *messaging.RabbitMQ, svc *service.InventoryService, log *logger.Logger) (*DeliveryEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "inventory-service.purchasing-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangePurchasingEvents, "purchasing.order.#"); err != nil {
		return nil, err
	}

	c := &DeliveryEventConsumer{
		consumer: consumer,
		service:  svc,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventOrderDelivered, c.handleOrderDelivered)

	return c, nil
}

// Start starts consuming messages
func (c *DeliveryEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *DeliveryEventConsumer) handleOrderDelivered(ctx context.Context, event *messaging.Event) error {
	var data messaging.OrderDeliveredEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("purchase_order_id", data.PurchaseOrderID).
		Str("branch_id", data.BranchID).
		Int("items", len(data.Items)).
		Msg("received order delivered event")

	return c.service.HandleOrderDelivered(ctx, data)
}
