//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RafaelEmery/payments-engine/internal/payment"
)

// setupDatabase starts a disposable PostgreSQL container, runs the
// migrations, and returns a connected Database.
func setupDatabase(t *testing.T) *Database {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("payments"),
		tcpostgres.WithUsername("payments"),
		tcpostgres.WithPassword("payments"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Connect(ctx, Config{
		PrimaryDSN:     dsn,
		MigrationsPath: "file://migrations",
		DatabaseName:   "payments",
	}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func seedCustomer(t *testing.T, db *Database, document string) *payment.Customer {
	t.Helper()

	customer := &payment.Customer{
		Name:           "Integration Merchant",
		Type:           payment.CustomerIndividual,
		DocumentNumber: document,
		Active:         true,
	}
	require.NoError(t, NewCustomerRepository(db).Create(context.Background(), customer))

	return customer
}

func TestCustomerRepository(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	customer := seedCustomer(t, db, "61413234054")

	found, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)
	assert.Equal(t, "61413234054", found.DocumentNumber)
	assert.True(t, found.Active)

	exists, err := repo.ExistsByDocument(ctx, "61413234054")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByDocument(ctx, "82975730000172")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.SetActive(ctx, customer.ID, false))

	found, err = repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, found.Active)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, payment.IsNotFound(err))

	err = repo.SetActive(ctx, uuid.New(), true)
	assert.True(t, payment.IsNotFound(err))

	// The unique constraint backs document uniqueness.
	err = repo.Create(ctx, &payment.Customer{
		Name:           "Copycat",
		Type:           payment.CustomerIndividual,
		DocumentNumber: "61413234054",
		Active:         true,
	})
	require.Error(t, err)
}

func TestLedgerRepository(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(db)

	customer := seedCustomer(t, db, "61413234054")

	balance, err := ledger.CreateBalance(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, balance.Available.IsZero())
	assert.True(t, balance.WaitingFunds.IsZero())

	// Credit settlement: the amount lands on waiting funds.
	mutated, err := ledger.ApplyBalanceDelta(ctx, customer.ID, decimal.Zero, decimal.RequireFromString("9.50"))
	require.NoError(t, err)
	assert.True(t, mutated.WaitingFunds.Equal(decimal.RequireFromString("9.50")))

	// Release: waiting funds move to available.
	mutated, err = ledger.ApplyBalanceDelta(ctx, customer.ID,
		decimal.RequireFromString("9.50"), decimal.RequireFromString("-9.50"))
	require.NoError(t, err)
	assert.True(t, mutated.Available.Equal(decimal.RequireFromString("9.50")))
	assert.True(t, mutated.WaitingFunds.IsZero())

	// A delta that would go negative writes nothing.
	_, err = ledger.ApplyBalanceDelta(ctx, customer.ID, decimal.RequireFromString("-100"), decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, payment.ErrorInvalidBalance, payment.CodeOf(err))

	current, err := ledger.FindBalanceByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, current.Available.Equal(decimal.RequireFromString("9.50")))

	// One pre-mutation snapshot per successful delta, newest first.
	histories, err := ledger.ListBalanceHistory(ctx, balance.ID)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.True(t, histories[0].WaitingFunds.Equal(decimal.RequireFromString("9.50")))
	assert.True(t, histories[1].Available.IsZero())
	assert.True(t, histories[1].WaitingFunds.IsZero())

	_, err = ledger.ApplyBalanceDelta(ctx, uuid.New(), decimal.Zero, decimal.Zero)
	assert.True(t, payment.IsNotFound(err))
}

func TestTransactionAndPayableRepositories(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, "61413234054")
	transactions := NewTransactionRepository(db)
	payables := NewPayableRepository(db)

	transaction := &payment.Transaction{
		Value:                decimal.RequireFromString("10"),
		Currency:             payment.CurrencyBRL,
		Description:          "smartband",
		Method:               payment.MethodCredit,
		Status:               payment.StatusPending,
		ExpectedFee:          decimal.Zero,
		CardNumber:           "5365128843143733",
		CardOwner:            "Fulano de Tal",
		CardExpirationYear:   "2030",
		CardVerificationCode: "123",
	}
	require.NoError(t, transactions.Create(ctx, transaction))

	payable := &payment.Payable{
		TransactionID: transaction.ID,
		CustomerID:    customer.ID,
		Amount:        decimal.RequireFromString("9.50"),
		Status:        payment.PayableWaitingFunds,
		PaymentDate:   time.Now().UTC().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, payables.Create(ctx, payable))

	waiting, err := payables.ListWaitingCreatedOn(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, payable.ID, waiting[0].ID)
	assert.True(t, waiting[0].Amount.Equal(decimal.RequireFromString("9.50")))

	require.NoError(t, transactions.MarkProcessed(ctx, transaction.ID, decimal.RequireFromString("0.05")))
	require.NoError(t, payables.MarkPaid(ctx, payable.ID))

	// Paid payables leave the waiting pool.
	waiting, err = payables.ListWaitingCreatedOn(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, waiting)

	assert.True(t, payment.IsNotFound(transactions.MarkFailed(ctx, uuid.New())))
	assert.True(t, payment.IsNotFound(payables.MarkPaid(ctx, uuid.New())))
}
