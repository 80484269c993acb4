package service

import (
	"context"
	"time"

	"github.com/salonhq/salon-backend/pkg/logger"
)

// ExpiryScheduler runs the expiration sweep periodically in the background.
// The sweep endpoint stays available for manual runs regardless.
type ExpiryScheduler struct {
	svc      *InventoryService
	interval time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
}

// NewExpiryScheduler creates a new expiry scheduler
func NewExpiryScheduler(svc *InventoryService, interval time.Duration, log *logger.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		svc:      svc,
		interval: interval,
		logger:   log,
	}
}

// Start starts the scheduler in a background goroutine. A non-positive
// interval disables it.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("expiry scheduler disabled")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("expiry scheduler started")

		// Run an initial sweep immediately
		s.runSweepCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("expiry scheduler stopped")
				return
			case <-ticker.C:
				s.runSweepCycle(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine
func (s *ExpiryScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *ExpiryScheduler) runSweepCycle(ctx context.Context) {
	start := time.Now()

	count, err := s.svc.RunExpirySweep(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("expiry sweep failed")
		return
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Int("expired", count).
		Msg("expiry sweep completed")
}
