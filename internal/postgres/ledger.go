package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaelEmery/payments-engine/internal/payment"
)

// LedgerRepository persists balances and their mutation history on
// PostgreSQL. Mutations run in a single transaction with the balance row
// locked, so concurrent deltas against one customer serialize.
type LedgerRepository struct {
	db *Database
}

// NewLedgerRepository creates a ledger repository backed by db.
func NewLedgerRepository(db *Database) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var _ payment.LedgerRepository = (*LedgerRepository)(nil)

// CreateBalance inserts a zeroed balance for the customer.
func (r *LedgerRepository) CreateBalance(ctx context.Context, customerID uuid.UUID) (*payment.Balance, error) {
	now := time.Now().UTC()

	balance := &payment.Balance{
		ID:           uuid.New(),
		CustomerID:   customerID,
		Available:    decimal.Zero,
		WaitingFunds: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO balances (id, customer_id, available, waiting_funds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.primary.ExecContext(ctx, query,
		balance.ID,
		balance.CustomerID,
		balance.Available,
		balance.WaitingFunds,
		balance.CreatedAt,
		balance.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert balance: %w", err)
	}

	return balance, nil
}

// FindBalanceByCustomer returns the customer's balance or ErrorNotFound.
func (r *LedgerRepository) FindBalanceByCustomer(ctx context.Context, customerID uuid.UUID) (*payment.Balance, error) {
	query := `
		SELECT id, customer_id, available, waiting_funds, created_at, updated_at
		FROM balances
		WHERE customer_id = $1`

	balance, err := scanBalance(r.db.resolver.QueryRowContext(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.NewError(payment.ErrorNotFound, "balance", "balance not found for customer")
		}

		return nil, fmt.Errorf("failed to query balance: %w", err)
	}

	return balance, nil
}

// ApplyBalanceDelta atomically applies the deltas to the customer's balance.
// Inside one transaction it locks the balance row, rejects any result that
// would go negative or exceed the system ceiling, records a pre-mutation
// snapshot, and writes the new values. Either the snapshot and the mutation
// both commit or neither does.
func (r *LedgerRepository) ApplyBalanceDelta(ctx context.Context, customerID uuid.UUID, availableDelta, waitingDelta decimal.Decimal) (*payment.Balance, error) {
	tx, err := r.db.primary.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT id, customer_id, available, waiting_funds, created_at, updated_at
		FROM balances
		WHERE customer_id = $1
		FOR UPDATE`

	balance, err := scanBalance(tx.QueryRowContext(ctx, lockQuery, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.NewError(payment.ErrorNotFound, "balance", "balance not found for customer")
		}

		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}

	newAvailable := balance.Available.Add(availableDelta)
	newWaiting := balance.WaitingFunds.Add(waitingDelta)

	if err := checkBounds(newAvailable, newWaiting); err != nil {
		return nil, err
	}

	historyQuery := `
		INSERT INTO balance_histories (id, balance_id, available, waiting_funds, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx, historyQuery,
		uuid.New(),
		balance.ID,
		balance.Available,
		balance.WaitingFunds,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert balance history: %w", err)
	}

	updateQuery := `UPDATE balances SET available = $1, waiting_funds = $2, updated_at = $3 WHERE id = $4`

	if _, err = tx.ExecContext(ctx, updateQuery, newAvailable, newWaiting, now, balance.ID); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	balance.Available = newAvailable
	balance.WaitingFunds = newWaiting
	balance.UpdatedAt = now

	return balance, nil
}

// ListBalanceHistory returns the snapshot chain of a balance, newest first.
func (r *LedgerRepository) ListBalanceHistory(ctx context.Context, balanceID uuid.UUID) ([]payment.BalanceHistory, error) {
	query := `
		SELECT id, balance_id, available, waiting_funds, created_at
		FROM balance_histories
		WHERE balance_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.resolver.QueryContext(ctx, query, balanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var histories []payment.BalanceHistory

	for rows.Next() {
		var history payment.BalanceHistory

		err := rows.Scan(
			&history.ID,
			&history.BalanceID,
			&history.Available,
			&history.WaitingFunds,
			&history.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		histories = append(histories, history)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return histories, nil
}

func checkBounds(available, waiting decimal.Decimal) error {
	if available.IsNegative() || waiting.IsNegative() {
		return payment.NewError(payment.ErrorInvalidBalance, "balance", "balance cannot go negative")
	}

	if available.GreaterThan(payment.BalanceCeiling) || waiting.GreaterThan(payment.BalanceCeiling) {
		return payment.NewError(payment.ErrorInvalidBalance, "balance", "balance exceeds the system ceiling")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (*payment.Balance, error) {
	var balance payment.Balance

	err := row.Scan(
		&balance.ID,
		&balance.CustomerID,
		&balance.Available,
		&balance.WaitingFunds,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &balance, nil
}
