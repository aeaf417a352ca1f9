package service

import (
	"context"
	"log"
	"time"

	"fandreams/internal/repository"
)

// Sweeper is the background settlement loop: vesting schedule ticks, matured
// commitments, ended campaigns, and stale pending payments. Every pass is
// idempotent, so overlapping deployments running their own sweepers are safe.
type Sweeper struct {
	interval    time.Duration
	vesting     *VestingService
	commitments *CommitmentService
	pitches     *PitchService
	payments    *repository.PaymentRepository
}

func NewSweeper(
	interval time.Duration,
	vesting *VestingService,
	commitments *CommitmentService,
	pitches *PitchService,
	payments *repository.PaymentRepository,
) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		interval:    interval,
		vesting:     vesting,
		commitments: commitments,
		pitches:     pitches,
		payments:    payments,
	}
}

// Run blocks until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("[sweeper] started, interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sweeper] stopped")
			return
		case now := <-ticker.C:
			s.RunOnce(now)
		}
	}
}

// RunOnce executes a single sweep pass. Exposed for tests and admin triggers.
func (s *Sweeper) RunOnce(now time.Time) {
	if processed, total, err := s.vesting.OnScheduleTick(now); err != nil {
		log.Printf("[sweeper] vesting tick failed: %v", err)
	} else if total > 0 {
		log.Printf("[sweeper] vesting: %d/%d grants unlocked", processed, total)
	}

	if processed, total, err := s.commitments.SweepMatured(now); err != nil {
		log.Printf("[sweeper] commitment sweep failed: %v", err)
	} else if total > 0 {
		log.Printf("[sweeper] commitments: %d/%d completed", processed, total)
	}

	if processed, total, err := s.pitches.SweepEnded(now); err != nil {
		log.Printf("[sweeper] pitch sweep failed: %v", err)
	} else if total > 0 {
		log.Printf("[sweeper] campaigns: %d/%d settled", processed, total)
	}

	if expired, err := s.payments.ExpireStale(now); err != nil {
		log.Printf("[sweeper] payment expiry failed: %v", err)
	} else if expired > 0 {
		log.Printf("[sweeper] payments: %d expired", expired)
	}
}
