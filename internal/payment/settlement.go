package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/RafaelEmery/payments-engine/pkg/log"
)

// SettlementService releases waiting funds: it finds today's waiting_funds
// payables and moves each amount from the owner's waiting balance to the
// available balance.
type SettlementService struct {
	payables  PayableRepository
	customers CustomerRepository
	ledger    LedgerRepository
	logger    log.Logger
	now       func() time.Time
}

// NewSettlementService creates the daily settlement job. logger and now may
// be nil.
func NewSettlementService(
	payables PayableRepository,
	customers CustomerRepository,
	ledger LedgerRepository,
	logger log.Logger,
	now func() time.Time,
) *SettlementService {
	if logger == nil {
		logger = log.NewNop()
	}

	if now == nil {
		now = time.Now
	}

	return &SettlementService{
		payables:  payables,
		customers: customers,
		ledger:    ledger,
		logger:    logger,
		now:       now,
	}
}

// RunDailySettlement processes all waiting_funds payables created on the
// current calendar date, skipping payables whose owner is deactivated.
// Per-payable failures are logged and skipped; one payable's error never
// aborts the run. Returns the number of payables attempted (not the number
// of successes). Re-running after a successful run selects nothing: paid
// payables are no longer eligible.
func (s *SettlementService) RunDailySettlement(ctx context.Context) (int, error) {
	s.logger.Log(ctx, log.LevelInfo, "starting daily payable settlement")

	payables, err := s.payables.ListWaitingCreatedOn(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if len(payables) == 0 {
		s.logger.Log(ctx, log.LevelInfo, "no payables to settle today")
		return 0, nil
	}

	eligible, skippedCustomers, err := s.partitionByOwnerActivity(ctx, payables)
	if err != nil {
		return 0, err
	}

	if len(skippedCustomers) > 0 {
		s.logger.Log(ctx, log.LevelInfo, "skipping payables of inactive customers",
			log.Strings("customer_ids", skippedCustomers),
		)
	}

	for _, payable := range eligible {
		if err := s.settle(ctx, payable); err != nil {
			s.logger.Log(ctx, log.LevelError, "error applying payable to balance",
				log.String("payable_id", payable.ID.String()),
				log.Err(err),
			)

			continue
		}
	}

	s.logger.Log(ctx, log.LevelInfo, "daily payable settlement finished",
		log.Int("payables_processed", len(eligible)),
	)

	return len(eligible), nil
}

// settle moves one payable's amount from waiting funds to available and
// marks it paid. The ledger mutation and the status update are two steps;
// the status flips only after the funds moved.
func (s *SettlementService) settle(ctx context.Context, payable Payable) error {
	if _, err := s.ledger.ApplyBalanceDelta(ctx, payable.CustomerID, payable.Amount, payable.Amount.Neg()); err != nil {
		return err
	}

	return s.payables.MarkPaid(ctx, payable.ID)
}

// partitionByOwnerActivity splits payables into those owned by active
// customers and the distinct IDs of inactive owners, resolving each owner
// once per run.
func (s *SettlementService) partitionByOwnerActivity(ctx context.Context, payables []Payable) ([]Payable, []string, error) {
	activity := make(map[uuid.UUID]bool, len(payables))
	eligible := make([]Payable, 0, len(payables))

	var skipped []string

	for _, payable := range payables {
		active, seen := activity[payable.CustomerID]
		if !seen {
			customer, err := s.customers.FindByID(ctx, payable.CustomerID)
			if err != nil {
				return nil, nil, err
			}

			active = customer.Active
			activity[payable.CustomerID] = active

			if !active {
				skipped = append(skipped, payable.CustomerID.String())
			}
		}

		if active {
			eligible = append(eligible, payable)
		}
	}

	return eligible, skipped, nil
}
