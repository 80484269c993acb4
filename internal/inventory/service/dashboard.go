package service

import (
	"context"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
)

// DashboardStats summarizes a branch's inventory health
type DashboardStats struct {
	TotalProducts int `json:"total_products"`
	TotalStock    int `json:"total_stock"`
	InStockCount  int `json:"in_stock_count"`
	LowStockCount int `json:"low_stock_count"`
	OutOfStock    int `json:"out_of_stock_count"`
	ExpiringCount int `json:"expiring_count"`
	ExpiredCount  int `json:"expired_count"`
}

// GetDashboardStats aggregates stock and batch counts for a branch
func (s *InventoryService) GetDashboardStats(ctx context.Context, branchID string) (*DashboardStats, error) {
	totalProducts, totalStock, err := s.stockRepo.Totals(ctx, branchID)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.stockRepo.CountByStatus(ctx, branchID)
	if err != nil {
		return nil, err
	}

	expiring, err := s.batchRepo.Expiring(ctx, branchID, s.expiringSoonDays)
	if err != nil {
		return nil, err
	}

	expired, err := s.batchRepo.Expired(ctx, branchID)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts: totalProducts,
		TotalStock:    totalStock,
		InStockCount:  byStatus[domain.StockStatusInStock],
		LowStockCount: byStatus[domain.StockStatusLowStock],
		OutOfStock:    byStatus[domain.StockStatusOutOfStock],
		ExpiringCount: len(expiring),
		ExpiredCount:  len(expired),
	}, nil
}
