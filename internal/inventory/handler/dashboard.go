package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/httputil"
	"github.com/salonhq/salon-backend/pkg/logger"
)

// DashboardHandler serves aggregated branch statistics
type DashboardHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.InventoryService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

// Stats returns inventory health counts for a branch
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")

	stats, err := h.service.GetDashboardStats(r.Context(), branchID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
