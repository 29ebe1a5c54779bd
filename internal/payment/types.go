// Package payment holds the card-payment processing core: the domain model,
// the settlement strategies per payment method, the transaction processor,
// and the daily settlement job. Persistence is reached exclusively through
// the repository interfaces declared in this package.
package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCeiling is the maximum magnitude either balance field may reach.
// No billionaires are allowed in this software.
var BalanceCeiling = decimal.RequireFromString("999999999.99")

// Customer is a merchant account holder identified by a unique national
// document number whose format depends on the customer type.
type Customer struct {
	ID             uuid.UUID
	Name           string
	Type           CustomerType
	DocumentNumber string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance is a customer's ledger position. Both fields are non-negative and
// bounded by BalanceCeiling; mutation happens only through
// LedgerRepository.ApplyBalanceDelta.
type Balance struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	Available    decimal.Decimal
	WaitingFunds decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BalanceHistory is an immutable snapshot of a balance taken immediately
// before a mutation. Rows are append-only; the current balance plus the
// snapshot chain reconstructs the full mutation history.
type BalanceHistory struct {
	ID           uuid.UUID
	BalanceID    uuid.UUID
	Available    decimal.Decimal
	WaitingFunds decimal.Decimal
	CreatedAt    time.Time
}

// Transaction is one payment attempt. Card fields are an opaque
// pass-through; the payload is assumed already authorized upstream.
type Transaction struct {
	ID                   uuid.UUID
	Value                decimal.Decimal
	Currency             Currency
	Description          string
	Method               TransactionMethod
	Status               TransactionStatus
	ExpectedFee          decimal.Decimal
	CardNumber           string
	CardOwner            string
	CardExpirationYear   string
	CardVerificationCode string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Payable is the merchant-facing receivable derived from a transaction:
// the transaction value net of the method fee, released on PaymentDate.
type Payable struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Status        PayableStatus
	PaymentDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
