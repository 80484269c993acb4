package service

import (
	"context"
	"time"

	"github.com/salonhq/salon-backend/internal/inventory/domain"
)

// BatchWithExpiry is a batch annotated with its display classification
type BatchWithExpiry struct {
	*domain.ProductBatch
	ExpiryStatus    string `json:"expiry_status"`
	DaysUntilExpiry *int   `json:"days_until_expiry,omitempty"`
}

func annotateExpiry(batches []*domain.ProductBatch, now time.Time) []*BatchWithExpiry {
	result := make([]*BatchWithExpiry, len(batches))
	for i, batch := range batches {
		annotated := &BatchWithExpiry{
			ProductBatch: batch,
			ExpiryStatus: batch.ExpiryStatus(now),
		}
		if days, ok := domain.DaysUntilExpiry(batch.ExpirationDate, now); ok {
			annotated.DaysUntilExpiry = &days
		}
		result[i] = annotated
	}
	return result
}

// GetBatches lists batches at a branch in FIFO order, optionally filtered
// by product and status, each annotated with its expiry classification.
func (s *InventoryService) GetBatches(ctx context.Context, branchID, productID, status string) ([]*BatchWithExpiry, error) {
	batches, err := s.batchRepo.List(ctx, branchID, productID, status)
	if err != nil {
		return nil, err
	}
	return annotateExpiry(batches, time.Now().UTC()), nil
}

// UpdateBatchExpirationStatus flips a branch's active batches whose
// expiration date has passed to expired, leaving remaining quantities
// untouched. Depleted batches stay depleted. The sweep is idempotent:
// running it twice transitions nothing the second time. Returns the number
// of batches transitioned.
func (s *InventoryService) UpdateBatchExpirationStatus(ctx context.Context, branchID string) (int, error) {
	flipped, err := s.batchRepo.ExpireDue(ctx, branchID, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if len(flipped) > 0 {
		s.logger.Info().
			Str("branch_id", branchID).
			Int("count", len(flipped)).
			Msg("batches marked expired")
	}

	for _, batch := range flipped {
		s.publisher.PublishBatchExpired(ctx, batch)
	}

	return len(flipped), nil
}

// GetExpiringBatches lists active batches at a branch expiring within
// daysAhead days, soonest first. A non-positive daysAhead falls back to the
// configured expiring-soon window.
func (s *InventoryService) GetExpiringBatches(ctx context.Context, branchID string, daysAhead int) ([]*BatchWithExpiry, error) {
	if daysAhead <= 0 {
		daysAhead = s.expiringSoonDays
	}

	batches, err := s.batchRepo.Expiring(ctx, branchID, daysAhead)
	if err != nil {
		return nil, err
	}
	return annotateExpiry(batches, time.Now().UTC()), nil
}

// GetExpiredBatches lists batches at a branch already marked expired
func (s *InventoryService) GetExpiredBatches(ctx context.Context, branchID string) ([]*BatchWithExpiry, error) {
	batches, err := s.batchRepo.Expired(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return annotateExpiry(batches, time.Now().UTC()), nil
}

// RunExpirySweep is the scheduler entry point: it sweeps every branch for
// newly expired batches and publishes warnings for batches inside the
// critical window.
func (s *InventoryService) RunExpirySweep(ctx context.Context) (int, error) {
	count, err := s.UpdateBatchExpirationStatus(ctx, "")
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	critical, err := s.batchRepo.Expiring(ctx, "", 7)
	if err != nil {
		return count, err
	}
	for _, batch := range critical {
		s.publisher.PublishBatchExpiring(ctx, batch, now)
	}

	return count, nil
}
