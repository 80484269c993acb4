package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/httputil"
	"github.com/salonhq/salon-backend/pkg/logger"
)

// StockHandler handles stock ledger endpoints
type StockHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(svc *service.InventoryService, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service: svc,
		logger:  log,
	}
}

// AddStock increments a branch's stock for a product
func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchID        string          `json:"branch_id" validate:"required"`
		ProductID       string          `json:"product_id" validate:"required"`
		Quantity        int             `json:"quantity" validate:"required,gt=0"`
		UnitCost        decimal.Decimal `json:"unit_cost"`
		MinStock        *int            `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
		MaxStock        *int            `json:"max_stock,omitempty" validate:"omitempty,gte=0"`
		PurchaseOrderID string          `json:"purchase_order_id,omitempty"`
		Reason          string          `json:"reason,omitempty"`
		Notes           *string         `json:"notes,omitempty"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	rec, err := h.service.AddStock(r.Context(), service.AddStockInput{
		BranchID:        req.BranchID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		UnitCost:        req.UnitCost,
		MinStock:        req.MinStock,
		MaxStock:        req.MaxStock,
		PurchaseOrderID: req.PurchaseOrderID,
		Reason:          req.Reason,
		Notes:           req.Notes,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rec)
}

// ReduceStock decrements a branch's stock without batch bookkeeping
func (h *StockHandler) ReduceStock(w http.ResponseWriter, r *http.Request) {
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

	rec, err := h.service.ReduceStock(r.Context(), service.ReduceStockInput{
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

	httputil.JSON(w, http.StatusOK, rec)
}

// Update patches threshold/cost/stock fields of a stock record
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	stockID := chi.URLParam(r, "id")

	var req struct {
		CurrentStock *int             `json:"current_stock,omitempty" validate:"omitempty,gte=0"`
		MinStock     *int             `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
		MaxStock     *int             `json:"max_stock,omitempty" validate:"omitempty,gte=0"`
		UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	rec, err := h.service.UpdateStock(r.Context(), stockID, service.UpdateStockInput{
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		MaxStock:     req.MaxStock,
		UnitCost:     req.UnitCost,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rec)
}

// ListByBranch lists a branch's stock records
func (h *StockHandler) ListByBranch(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")
	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")

	stocks, err := h.service.GetBranchStocks(r.Context(), branchID, status, category)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stocks)
}

// Movements lists a branch's movement log
func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")
	productID := r.URL.Query().Get("product_id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	movements, err := h.service.GetMovements(r.Context(), branchID, productID, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, movements)
}
