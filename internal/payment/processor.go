package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaelEmery/payments-engine/pkg/log"
)

// ProcessRequest is the inbound transaction request. Card fields are an
// opaque pass-through; the payload is assumed already authorized.
type ProcessRequest struct {
	CustomerID           uuid.UUID
	Value                decimal.Decimal
	Currency             Currency
	Description          string
	Method               TransactionMethod
	CardNumber           string
	CardOwner            string
	CardExpirationYear   string
	CardVerificationCode string
}

// ProcessResult carries the customer and the transaction's final status.
type ProcessResult struct {
	CustomerID    uuid.UUID         `json:"customer_id"`
	TransactionID uuid.UUID         `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
}

// Processor orchestrates the transaction pipeline: customer and balance
// resolution, pending-transaction creation, strategy dispatch, and the
// terminal status transition.
type Processor struct {
	customers    CustomerRepository
	transactions TransactionRepository
	ledger       LedgerRepository
	strategies   *StrategySet
	logger       log.Logger
}

// NewProcessor creates a transaction processor. logger may be nil.
func NewProcessor(
	customers CustomerRepository,
	transactions TransactionRepository,
	ledger LedgerRepository,
	strategies *StrategySet,
	logger log.Logger,
) *Processor {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Processor{
		customers:    customers,
		transactions: transactions,
		ledger:       ledger,
		strategies:   strategies,
		logger:       logger,
	}
}

// Process runs one payment attempt through the pipeline.
//
// Lookup failures (unknown customer, missing balance) surface as
// ErrorNotFound before any row is written. Once the pending transaction
// exists, any failure marks it failed and surfaces ErrorTransactionFailed;
// a payable inserted before a later failure is intentionally left as-is
// (documented partial-failure policy, no compensating delete).
func (p *Processor) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	p.logger.Log(ctx, log.LevelInfo, "transaction request received",
		log.String("customer_id", req.CustomerID.String()),
		log.String("method", string(req.Method)),
	)

	customer, err := p.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return ProcessResult{}, err
	}

	if _, err = p.ledger.FindBalanceByCustomer(ctx, customer.ID); err != nil {
		return ProcessResult{}, err
	}

	transaction, err := p.createPending(ctx, req)
	if err != nil {
		return ProcessResult{}, err
	}

	strategy, err := p.strategies.For(transaction.Method)
	if err != nil {
		return p.fail(ctx, nil, customer, transaction, err)
	}

	p.logger.Log(ctx, log.LevelDebug, "settlement strategy resolved",
		log.String("transaction_id", transaction.ID.String()),
		log.String("method", string(strategy.Method())),
	)

	payable, err := strategy.CreatePayable(ctx, transaction, customer)
	if err != nil {
		return p.fail(ctx, strategy, customer, transaction, err)
	}

	if err = strategy.ApplyPayableToLedger(ctx, payable, customer); err != nil {
		return p.fail(ctx, strategy, customer, transaction, err)
	}

	p.logger.Log(ctx, log.LevelInfo, "ledger mutated",
		log.String("transaction_id", transaction.ID.String()),
		log.String("payable_id", payable.ID.String()),
		log.String("amount", payable.Amount.String()),
	)

	if err = strategy.Finalize(ctx, transaction); err != nil {
		return p.fail(ctx, strategy, customer, transaction, err)
	}

	return ProcessResult{
		CustomerID:    customer.ID,
		TransactionID: transaction.ID,
		Status:        StatusProcessed,
	}, nil
}

// createPending inserts the transaction row in pending status with a
// zeroed fee placeholder.
func (p *Processor) createPending(ctx context.Context, req ProcessRequest) (*Transaction, error) {
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	transaction := &Transaction{
		Value:                req.Value,
		Currency:             currency,
		Description:          req.Description,
		Method:               req.Method,
		Status:               StatusPending,
		ExpectedFee:          decimal.Zero,
		CardNumber:           req.CardNumber,
		CardOwner:            req.CardOwner,
		CardExpirationYear:   req.CardExpirationYear,
		CardVerificationCode: req.CardVerificationCode,
	}

	if err := p.transactions.Create(ctx, transaction); err != nil {
		return nil, WrapError(ErrorTransactionCreation, "transaction", "could not create pending transaction", err)
	}

	return transaction, nil
}

// fail marks the transaction failed (through the strategy when one was
// resolved) and surfaces ErrorTransactionFailed wrapping the cause. The
// fail-mark is best effort: its own failure is logged, never swallowed
// into the surfaced error.
func (p *Processor) fail(ctx context.Context, strategy Strategy, customer *Customer, transaction *Transaction, cause error) (ProcessResult, error) {
	markErr := error(nil)
	if strategy != nil {
		markErr = strategy.Fail(ctx, transaction)
	} else if markErr = p.transactions.MarkFailed(ctx, transaction.ID); markErr == nil {
		transaction.Status = StatusFailed
	}

	if markErr != nil {
		p.logger.Log(ctx, log.LevelError, "could not mark transaction failed",
			log.String("transaction_id", transaction.ID.String()),
			log.Err(markErr),
		)
	}

	p.logger.Log(ctx, log.LevelError, "transaction processing failed",
		log.String("transaction_id", transaction.ID.String()),
		log.Err(cause),
	)

	result := ProcessResult{
		CustomerID:    customer.ID,
		TransactionID: transaction.ID,
		Status:        StatusFailed,
	}

	return result, WrapError(ErrorTransactionFailed, "transaction", "transaction processing failed", cause)
}
