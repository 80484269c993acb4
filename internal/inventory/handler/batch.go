package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/errors"
	"github.com/salonhq/salon-backend/pkg/httputil"
	"github.com/salonhq/salon-backend/pkg/logger"
)

// BatchHandler handles batch and deduction endpoints
type BatchHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(svc *service.InventoryService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		service: svc,
		logger:  log,
	}
}

type deliveryItemRequest struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ExpirationDate string          `json:"expiration_date"` // YYYY-MM-DD
}

// Deliver creates batches and ledger increments for a confirmed delivery
func (h *BatchHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PurchaseOrderID string                `json:"purchase_order_id" validate:"required"`
		BranchID        string                `json:"branch_id" validate:"required"`
		Items           []deliveryItemRequest `json:"items" validate:"required,min=1"`
		ReceivedBy      string                `json:"received_by"`
		ReceivedAt      *time.Time            `json:"received_at,omitempty"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	items := make([]service.DeliveryItem, 0, len(req.Items))
	for _, item := range req.Items {
		var expiry *time.Time
		if item.ExpirationDate != "" {
			parsed, err := time.Parse("2006-01-02", item.ExpirationDate)
			if err != nil {
				httputil.Error(w, errors.BadRequest("expiration_date must be formatted YYYY-MM-DD"))
				return
			}
			expiry = &parsed
		}
		items = append(items, service.DeliveryItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			ExpirationDate: expiry,
		})
	}

	receivedAt := time.Time{}
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	batches, err := h.service.CreateBatchesForDelivery(r.Context(), service.DeliveryInput{
		PurchaseOrderID: req.PurchaseOrderID,
		BranchID:        req.BranchID,
		Items:           items,
		ReceivedBy:      req.ReceivedBy,
		ReceivedAt:      receivedAt,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, batches)
}

// List lists a branch's batches in FIFO order
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")
	productID := r.URL.Query().Get("product_id")
	status := r.URL.Query().Get("status")

	batches, err := h.service.GetBatches(r.Context(), branchID, productID, status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Deduct consumes stock via FIFO deduction
func (h *BatchHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchID  string  `json:"branch_id" validate:"required"`
		ProductID string  `json:"product_id" validate:"required"`
		Quantity  int     `json:"quantity" validate:"required,gt=0"`
		Reason    string  `json:"reason" validate:"required"`
		Notes     *string `json:"notes,omitempty"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.DeductStockFIFO(r.Context(), service.DeductStockInput{
		BranchID:  req.BranchID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Sweep flips a branch's overdue batches to expired
func (h *BatchHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")

	count, err := h.service.UpdateBatchExpirationStatus(r.Context(), branchID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"expired": count})
}

// Expiring lists a branch's batches expiring within the window
func (h *BatchHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		var err error
		days, err = strconv.Atoi(v)
		if err != nil {
			httputil.Error(w, errors.BadRequest("days must be an integer"))
			return
		}
	}

	batches, err := h.service.GetExpiringBatches(r.Context(), branchID, days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Expired lists a branch's expired batches
func (h *BatchHandler) Expired(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")

	batches, err := h.service.GetExpiredBatches(r.Context(), branchID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}
