package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RafaelEmery/payments-engine/internal/payment"
)

// CustomerRepository persists customers on PostgreSQL.
type CustomerRepository struct {
	db *Database
}

// NewCustomerRepository creates a customer repository backed by db.
func NewCustomerRepository(db *Database) *CustomerRepository {
	return &CustomerRepository{db: db}
}

var _ payment.CustomerRepository = (*CustomerRepository)(nil)

// Create inserts the customer and fills in its ID and timestamps.
func (r *CustomerRepository) Create(ctx context.Context, customer *payment.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}

	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `
		INSERT INTO customers (id, name, type, document_number, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.primary.ExecContext(ctx, query,
		customer.ID,
		customer.Name,
		string(customer.Type),
		customer.DocumentNumber,
		customer.Active,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

// FindByID returns the customer or ErrorNotFound.
func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Customer, error) {
	query := `
		SELECT id, name, type, document_number, active, created_at, updated_at
		FROM customers
		WHERE id = $1`

	row := r.db.resolver.QueryRowContext(ctx, query, id)

	var customer payment.Customer

	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Type,
		&customer.DocumentNumber,
		&customer.Active,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.NewError(payment.ErrorNotFound, "customer", "customer not found")
		}

		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &customer, nil
}

// ExistsByDocument reports whether a customer already owns the document
// number. The document is expected stripped of formatting.
func (r *CustomerRepository) ExistsByDocument(ctx context.Context, documentNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE document_number = $1)`

	var exists bool
	if err := r.db.resolver.QueryRowContext(ctx, query, documentNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check document number: %w", err)
	}

	return exists, nil
}

// SetActive flips the active flag, or returns ErrorNotFound for an unknown
// customer.
func (r *CustomerRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE customers SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.primary.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update customer activity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return payment.NewError(payment.ErrorNotFound, "customer", "customer not found")
	}

	return nil
}
