package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaelEmery/payments-engine/internal/payment"
)

// TransactionRepository persists payment transactions on PostgreSQL.
type TransactionRepository struct {
	db *Database
}

// NewTransactionRepository creates a transaction repository backed by db.
func NewTransactionRepository(db *Database) *TransactionRepository {
	return &TransactionRepository{db: db}
}

var _ payment.TransactionRepository = (*TransactionRepository)(nil)

// Create inserts the transaction and fills in its ID and timestamps.
func (r *TransactionRepository) Create(ctx context.Context, transaction *payment.Transaction) error {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}

	now := time.Now().UTC()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	query := `
		INSERT INTO transactions (
			id, value, currency, description, method, status, expected_fee,
			card_number, card_owner, card_expiration_year, card_verification_code,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.primary.ExecContext(ctx, query,
		transaction.ID,
		transaction.Value,
		string(transaction.Currency),
		transaction.Description,
		string(transaction.Method),
		string(transaction.Status),
		transaction.ExpectedFee,
		transaction.CardNumber,
		transaction.CardOwner,
		transaction.CardExpirationYear,
		transaction.CardVerificationCode,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// MarkProcessed transitions the transaction to processed and records the fee
// rate that was applied.
func (r *TransactionRepository) MarkProcessed(ctx context.Context, id uuid.UUID, appliedFee decimal.Decimal) error {
	return r.setStatus(ctx, id, payment.StatusProcessed, &appliedFee)
}

// MarkFailed transitions the transaction to failed.
func (r *TransactionRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, payment.StatusFailed, nil)
}

func (r *TransactionRepository) setStatus(ctx context.Context, id uuid.UUID, status payment.TransactionStatus, fee *decimal.Decimal) error {
	query := `UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`
	args := []any{string(status), time.Now().UTC(), id}

	if fee != nil {
		query = `UPDATE transactions SET status = $1, expected_fee = $2, updated_at = $3 WHERE id = $4`
		args = []any{string(status), *fee, time.Now().UTC(), id}
	}

	result, err := r.db.primary.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return payment.NewError(payment.ErrorNotFound, "transaction", "transaction not found")
	}

	return nil
}
