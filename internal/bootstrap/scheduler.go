package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RafaelEmery/payments-engine/internal/payment"
	"github.com/RafaelEmery/payments-engine/pkg/cron"
	"github.com/RafaelEmery/payments-engine/pkg/log"
)

// Scheduler runs the daily settlement job on a cron schedule.
type Scheduler struct {
	schedule   *cron.Schedule
	settlement *payment.SettlementService
	logger     log.Logger
}

// NewScheduler parses the cron expression and builds the settlement
// scheduler. logger may be nil.
func NewScheduler(expression string, settlement *payment.SettlementService, logger log.Logger) (*Scheduler, error) {
	schedule, err := cron.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid settlement schedule %q: %w", expression, err)
	}

	if logger == nil {
		logger = log.NewNop()
	}

	return &Scheduler{schedule: schedule, settlement: settlement, logger: logger}, nil
}

// Run blocks until ctx is cancelled, firing the settlement job at each
// schedule tick. A failed run is logged and the loop keeps going; only
// context cancellation or an unresolvable schedule stops it.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next, err := s.schedule.Next(time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to resolve next settlement tick: %w", err)
		}

		s.logger.Log(ctx, log.LevelInfo, "settlement scheduled",
			log.String("next_run", next.Format(time.RFC3339)),
		)

		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()

			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}

			return ctx.Err()
		case <-timer.C:
		}

		if _, err := s.settlement.RunDailySettlement(ctx); err != nil {
			s.logger.Log(ctx, log.LevelError, "daily settlement run failed",
				log.Err(err),
			)
		}
	}
}
