package reconcile

import (
	"context"
	"fmt"
	"time"

	"makao/app/models/payment"
	"makao/pkg/logger"
)

// expiredReason recorded on payments the sweeper gives up on.
const expiredReason = "expired - no confirmation received"

// sweepBatchSize payments handled per sweep run.
const sweepBatchSize = 200

// Sweeper recovers pending payments whose callbacks never arrived.
// It polls the gateway for each stale payment and fails the ones the
// gateway still cannot confirm after the grace period.
type Sweeper struct {
	engine     *Engine
	staleAfter time.Duration
	grace      time.Duration
}

// NewSweeper creates a sweeper over the engine's ledger.
func NewSweeper(engine *Engine, staleAfter, grace time.Duration) *Sweeper {
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	if grace <= 0 {
		grace = time.Hour
	}
	return &Sweeper{engine: engine, staleAfter: staleAfter, grace: grace}
}

// Sweep runs one pass. Designed for a periodic scheduler slot.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.staleAfter)

	stale, err := s.engine.ledger.ListStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		logger.ErrorString("Sweeper", "List", err.Error())
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.InfoString("Sweeper", "Sweep", fmt.Sprintf("checking %d stale payments", len(stale)))

	expiry := time.Now().Add(-s.staleAfter - s.grace)
	for i := range stale {
		s.sweepOne(ctx, &stale[i], expiry)
	}
}

func (s *Sweeper) sweepOne(ctx context.Context, record *payment.Payment, expiry time.Time) {
	// a blank tracking id means the submit never completed, there is
	// nothing to poll, the row just ages into expiry below
	if record.GatewayTrackingID != "" {
		if err := s.engine.Poll(ctx, record); err != nil {
			logger.WarnString("Sweeper", "Poll",
				fmt.Sprintf("payment %d: %v", record.ID, err))
		}
	}

	if !record.CreatedAt.Before(expiry) {
		return
	}

	// old enough to give up on, unless the poll above just settled it
	fresh, err := s.engine.ledger.GetByID(ctx, record.ID)
	if err != nil {
		logger.ErrorString("Sweeper", "Reload", err.Error())
		return
	}
	if !fresh.IsPending() {
		return
	}

	won, err := s.engine.ledger.MarkFailed(ctx, record.ID, expiredReason)
	if err != nil {
		logger.ErrorString("Sweeper", "Expire", err.Error())
		return
	}
	if won {
		if record.GatewayTrackingID != "" {
			s.engine.correlations.Delete(ctx, record.GatewayTrackingID)
		}
		logger.InfoString("Sweeper", "Expire",
			fmt.Sprintf("payment %d expired after %s", record.ID, time.Since(record.CreatedAt).Round(time.Minute)))
	}
}
