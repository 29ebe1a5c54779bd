package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RafaelEmery/payments-engine/internal/payment"
)

// PayableRepository persists payables on PostgreSQL.
type PayableRepository struct {
	db *Database
}

// NewPayableRepository creates a payable repository backed by db.
func NewPayableRepository(db *Database) *PayableRepository {
	return &PayableRepository{db: db}
}

var _ payment.PayableRepository = (*PayableRepository)(nil)

// Create inserts the payable and fills in its ID and timestamps.
func (r *PayableRepository) Create(ctx context.Context, payable *payment.Payable) error {
	if payable.ID == uuid.Nil {
		payable.ID = uuid.New()
	}

	now := time.Now().UTC()
	payable.CreatedAt = now
	payable.UpdatedAt = now

	query := `
		INSERT INTO payables (id, transaction_id, customer_id, amount, status, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.primary.ExecContext(ctx, query,
		payable.ID,
		payable.TransactionID,
		payable.CustomerID,
		payable.Amount,
		string(payable.Status),
		payable.PaymentDate,
		payable.CreatedAt,
		payable.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payable: %w", err)
	}

	return nil
}

// ListWaitingCreatedOn returns the waiting_funds payables created on the
// calendar date of day, in UTC.
func (r *PayableRepository) ListWaitingCreatedOn(ctx context.Context, day time.Time) ([]payment.Payable, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT id, transaction_id, customer_id, amount, status, payment_date, created_at, updated_at
		FROM payables
		WHERE status = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at`

	rows, err := r.db.resolver.QueryContext(ctx, query, string(payment.PayableWaitingFunds), dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query payables: %w", err)
	}
	defer rows.Close()

	var payables []payment.Payable

	for rows.Next() {
		var payable payment.Payable

		err := rows.Scan(
			&payable.ID,
			&payable.TransactionID,
			&payable.CustomerID,
			&payable.Amount,
			&payable.Status,
			&payable.PaymentDate,
			&payable.CreatedAt,
			&payable.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payable: %w", err)
		}

		payables = append(payables, payable)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payables: %w", err)
	}

	return payables, nil
}

// MarkPaid transitions the payable to paid.
func (r *PayableRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payables SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.primary.ExecContext(ctx, query, string(payment.PayablePaid), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update payable status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return payment.NewError(payment.ErrorNotFound, "payable", "payable not found")
	}

	return nil
}
