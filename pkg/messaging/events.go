package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Inventory events
	EventStockReceived  = "inventory.stock.received"
	EventStockDeducted  = "inventory.stock.deducted"
	EventStockReduced   = "inventory.stock.reduced"
	EventStockLow       = "inventory.stock.low"
	EventBatchExpired   = "inventory.batch.expired"
	EventBatchExpiring  = "inventory.batch.expiring"

	// Purchasing events (consumed from the purchasing service)
	EventOrderDelivered = "purchasing.order.delivered"
)

// Exchange names
const (
	ExchangeInventoryEvents  = "inventory.events"
	ExchangePurchasingEvents = "purchasing.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Inventory Events

// StockReceivedEvent is published when a delivery adds stock to a branch
type StockReceivedEvent struct {
	BranchID        string `json:"branch_id"`
	ProductID       string `json:"product_id"`
	PurchaseOrderID string `json:"purchase_order_id,omitempty"`
	Quantity        int    `json:"quantity"`
	NewStock        int    `json:"new_stock"`
	ReceivedBy      string `json:"received_by"`
}

// StockDeductedEvent is published when stock is consumed via FIFO deduction
type StockDeductedEvent struct {
	BranchID   string `json:"branch_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	NewStock   int    `json:"new_stock"`
	Reason     string `json:"reason"`
	MovementID string `json:"movement_id"`
	DeductedBy string `json:"deducted_by"`
}

// StockReducedEvent is published when stock is reduced without batch tracking
type StockReducedEvent struct {
	BranchID  string `json:"branch_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	NewStock  int    `json:"new_stock"`
	Reason    string `json:"reason"`
	ReducedBy string `json:"reduced_by"`
}

// StockLowEvent is published when a branch's stock drops to or below its minimum
type StockLowEvent struct {
	BranchID     string `json:"branch_id"`
	ProductID    string `json:"product_id"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	Status       string `json:"status"`
}

// BatchExpiredEvent is published when the sweep flips a batch to expired
type BatchExpiredEvent struct {
	BranchID          string    `json:"branch_id"`
	ProductID         string    `json:"product_id"`
	BatchID           string    `json:"batch_id"`
	BatchNumber       string    `json:"batch_number"`
	ExpirationDate    time.Time `json:"expiration_date"`
	RemainingQuantity int       `json:"remaining_quantity"`
}

// BatchExpiringEvent is published when a batch is nearing expiration
type BatchExpiringEvent struct {
	BranchID       string    `json:"branch_id"`
	ProductID      string    `json:"product_id"`
	BatchID        string    `json:"batch_id"`
	BatchNumber    string    `json:"batch_number"`
	ExpirationDate time.Time `json:"expiration_date"`
	DaysUntil      int       `json:"days_until"`
	Quantity       int       `json:"quantity"`
}

// Purchasing Events

// OrderDeliveredItem is one line item of a confirmed delivery
type OrderDeliveredItem struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	ExpirationDate string `json:"expiration_date"` // YYYY-MM-DD, required per item
}

// OrderDeliveredEvent is consumed when the purchasing service confirms a
// delivery. Every item must carry an expiration date; the purchasing UI
// collects them before the order can transition to delivered.
type OrderDeliveredEvent struct {
	PurchaseOrderID string               `json:"purchase_order_id"`
	BranchID        string               `json:"branch_id"`
	Items           []OrderDeliveredItem `json:"items"`
	ReceivedBy      string               `json:"received_by"`
	ReceivedAt      time.Time            `json:"received_at"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.New().String()
}
