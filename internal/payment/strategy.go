package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RafaelEmery/payments-engine/pkg/log"
)

// Fee rates per payment method, as fractions of the transaction value.
var (
	CreditCardFee = decimal.RequireFromString("0.05")
	DebitCardFee  = decimal.RequireFromString("0.03")
)

// creditSettlementDelay is how long a credit payable waits before its funds
// are released to the available balance.
const creditSettlementDelay = 30 * 24 * time.Hour

// moneyScale is the storage scale for monetary amounts.
const moneyScale = 2

// Strategy encapsulates the method-specific settlement policy: fee rate,
// payable defaults, and how the payable amount affects the ledger.
type Strategy interface {
	Method() TransactionMethod
	FeeRate() decimal.Decimal
	// CreatePayable computes amount = value − value·feeRate and persists the
	// payable with the variant's status and payment date. No side effects
	// beyond the single insert.
	CreatePayable(ctx context.Context, transaction *Transaction, customer *Customer) (*Payable, error)
	// ApplyPayableToLedger moves the payable amount onto the customer's
	// balance through the ledger's atomic delta primitive.
	ApplyPayableToLedger(ctx context.Context, payable *Payable, customer *Customer) error
	// Finalize marks the transaction processed and records the applied fee.
	Finalize(ctx context.Context, transaction *Transaction) error
	// Fail marks the transaction failed. Safe to call when the payable or
	// ledger step never completed.
	Fail(ctx context.Context, transaction *Transaction) error
}

type strategyDeps struct {
	transactions TransactionRepository
	payables     PayableRepository
	ledger       LedgerRepository
	logger       log.Logger
	now          func() time.Time
}

// cardStrategy is the single concrete Strategy; credit and debit are
// tagged variants differing in fee rate, payable defaults, and whether the
// amount lands on waiting funds or directly on the available balance.
type cardStrategy struct {
	deps            strategyDeps
	method          TransactionMethod
	feeRate         decimal.Decimal
	payableStatus   PayableStatus
	settlementDelay time.Duration
	holdFunds       bool
}

var _ Strategy = (*cardStrategy)(nil)

func (s *cardStrategy) Method() TransactionMethod {
	return s.method
}

func (s *cardStrategy) FeeRate() decimal.Decimal {
	return s.feeRate
}

func (s *cardStrategy) CreatePayable(ctx context.Context, transaction *Transaction, customer *Customer) (*Payable, error) {
	amount := transaction.Value.Sub(transaction.Value.Mul(s.feeRate)).Round(moneyScale)

	payable := &Payable{
		TransactionID: transaction.ID,
		CustomerID:    customer.ID,
		Amount:        amount,
		Status:        s.payableStatus,
		PaymentDate:   s.deps.now().Add(s.settlementDelay),
	}

	if err := s.deps.payables.Create(ctx, payable); err != nil {
		return nil, fmt.Errorf("create payable: %w", err)
	}

	return payable, nil
}

func (s *cardStrategy) ApplyPayableToLedger(ctx context.Context, payable *Payable, customer *Customer) error {
	availableDelta := payable.Amount
	waitingDelta := decimal.Zero

	if s.holdFunds {
		availableDelta, waitingDelta = decimal.Zero, payable.Amount
	}

	if _, err := s.deps.ledger.ApplyBalanceDelta(ctx, customer.ID, availableDelta, waitingDelta); err != nil {
		return fmt.Errorf("apply payable to ledger: %w", err)
	}

	return nil
}

func (s *cardStrategy) Finalize(ctx context.Context, transaction *Transaction) error {
	if err := s.deps.transactions.MarkProcessed(ctx, transaction.ID, s.feeRate); err != nil {
		return fmt.Errorf("mark transaction processed: %w", err)
	}

	transaction.Status = StatusProcessed
	transaction.ExpectedFee = s.feeRate

	s.deps.logger.Log(ctx, log.LevelInfo, "transaction processed",
		log.String("transaction_id", transaction.ID.String()),
		log.String("method", string(s.method)),
		log.String("fee_applied", s.feeRate.String()),
	)

	return nil
}

func (s *cardStrategy) Fail(ctx context.Context, transaction *Transaction) error {
	if err := s.deps.transactions.MarkFailed(ctx, transaction.ID); err != nil {
		return fmt.Errorf("mark transaction failed: %w", err)
	}

	transaction.Status = StatusFailed

	s.deps.logger.Log(ctx, log.LevelInfo, "transaction failed",
		log.String("transaction_id", transaction.ID.String()),
		log.String("method", string(s.method)),
	)

	return nil
}

// StrategySet resolves settlement strategies by payment method. The
// enumeration is closed: anything outside credit and debit fails dispatch.
type StrategySet struct {
	deps strategyDeps
}

// NewStrategySet wires the repositories shared by every strategy variant.
// now may be nil, in which case time.Now is used.
func NewStrategySet(
	transactions TransactionRepository,
	payables PayableRepository,
	ledger LedgerRepository,
	logger log.Logger,
	now func() time.Time,
) *StrategySet {
	if logger == nil {
		logger = log.NewNop()
	}

	if now == nil {
		now = time.Now
	}

	return &StrategySet{deps: strategyDeps{
		transactions: transactions,
		payables:     payables,
		ledger:       ledger,
		logger:       logger,
		now:          now,
	}}
}

// For returns the strategy for the given method, or ErrorInvalidMethod for
// anything outside the closed enumeration. The method value originates from
// a validated boundary enum; dispatch still defends against unknown values.
func (set *StrategySet) For(method TransactionMethod) (Strategy, error) {
	switch method {
	case MethodCredit:
		return &cardStrategy{
			deps:            set.deps,
			method:          MethodCredit,
			feeRate:         CreditCardFee,
			payableStatus:   PayableWaitingFunds,
			settlementDelay: creditSettlementDelay,
			holdFunds:       true,
		}, nil
	case MethodDebit:
		return &cardStrategy{
			deps:          set.deps,
			method:        MethodDebit,
			feeRate:       DebitCardFee,
			payableStatus: PayablePaid,
		}, nil
	default:
		return nil, NewError(ErrorInvalidMethod, "transaction", fmt.Sprintf("invalid transaction method: %s", method))
	}
}
