package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRepository persists customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	ExistsByDocument(ctx context.Context, documentNumber string) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// TransactionRepository persists transactions and their terminal status
// transitions. A transaction transitions away from pending exactly once.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) error
	// MarkProcessed sets the terminal processed status and records the fee
	// rate actually applied.
	MarkProcessed(ctx context.Context, id uuid.UUID, appliedFee decimal.Decimal) error
	// MarkFailed sets the terminal failed status. Safe to call on a
	// transaction whose payable or ledger step never completed.
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// PayableRepository persists merchant receivables.
type PayableRepository interface {
	Create(ctx context.Context, payable *Payable) error
	// ListWaitingCreatedOn returns payables in waiting_funds status created
	// on the calendar date of day (not a rolling 24h window).
	ListWaitingCreatedOn(ctx context.Context, day time.Time) ([]Payable, error)
	MarkPaid(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository owns balance state and its append-only history.
type LedgerRepository interface {
	// CreateBalance creates the zeroed balance for a customer at onboarding.
	CreateBalance(ctx context.Context, customerID uuid.UUID) (*Balance, error)
	FindBalanceByCustomer(ctx context.Context, customerID uuid.UUID) (*Balance, error)
	// ApplyBalanceDelta atomically snapshots the pre-mutation balance into
	// a BalanceHistory row and applies both deltas. Concurrent calls for
	// the same customer serialize; a delta that would leave either field
	// negative or above BalanceCeiling fails with ErrorInvalidBalance and
	// writes nothing.
	ApplyBalanceDelta(ctx context.Context, customerID uuid.UUID, availableDelta, waitingDelta decimal.Decimal) (*Balance, error)
}
