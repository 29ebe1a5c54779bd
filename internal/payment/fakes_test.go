//go:build unit

package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory backing store shared by the fake repositories,
// with per-operation error injection for failure-path tests. The repository
// interfaces are exposed through the thin view types below because each
// declares its own Create method.
type fakeStore struct {
	mu sync.Mutex

	customers    map[uuid.UUID]*Customer
	balances     map[uuid.UUID]*Balance
	histories    []BalanceHistory
	transactions map[uuid.UUID]*Transaction
	payables     map[uuid.UUID]*Payable

	createTransactionErr error
	createPayableErr     error
	markProcessedErr     error
	markFailedErr        error
	markPaidErr          error
	applyDeltaErrs       map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers:      make(map[uuid.UUID]*Customer),
		balances:       make(map[uuid.UUID]*Balance),
		transactions:   make(map[uuid.UUID]*Transaction),
		payables:       make(map[uuid.UUID]*Payable),
		applyDeltaErrs: make(map[uuid.UUID]error),
	}
}

type fakeCustomers struct{ store *fakeStore }

type fakeTransactions struct{ store *fakeStore }

type fakePayables struct{ store *fakeStore }

type fakeLedger struct{ store *fakeStore }

var (
	_ CustomerRepository    = fakeCustomers{}
	_ TransactionRepository = fakeTransactions{}
	_ PayableRepository     = fakePayables{}
	_ LedgerRepository      = fakeLedger{}
)

func (f *fakeStore) customersRepo() fakeCustomers       { return fakeCustomers{store: f} }
func (f *fakeStore) transactionsRepo() fakeTransactions { return fakeTransactions{store: f} }
func (f *fakeStore) payablesRepo() fakePayables         { return fakePayables{store: f} }
func (f *fakeStore) ledgerRepo() fakeLedger             { return fakeLedger{store: f} }

// addCustomer seeds a customer with a zeroed balance.
func (f *fakeStore) addCustomer(active bool) *Customer {
	customer := &Customer{
		ID:             uuid.New(),
		Name:           "Test Merchant",
		Type:           CustomerIndividual,
		DocumentNumber: "61413234054",
		Active:         active,
		CreatedAt:      time.Now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.customers[customer.ID] = customer
	f.balances[customer.ID] = &Balance{
		ID:           uuid.New(),
		CustomerID:   customer.ID,
		Available:    decimal.Zero,
		WaitingFunds: decimal.Zero,
	}

	return customer
}

func (f fakeCustomers) Create(_ context.Context, customer *Customer) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}

	stored := *customer
	f.store.customers[customer.ID] = &stored

	return nil
}

func (f fakeCustomers) FindByID(_ context.Context, id uuid.UUID) (*Customer, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	customer, ok := f.store.customers[id]
	if !ok {
		return nil, NewError(ErrorNotFound, "customer", "customer not found")
	}

	found := *customer

	return &found, nil
}

func (f fakeCustomers) ExistsByDocument(_ context.Context, documentNumber string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, customer := range f.store.customers {
		if customer.DocumentNumber == documentNumber {
			return true, nil
		}
	}

	return false, nil
}

func (f fakeCustomers) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	customer, ok := f.store.customers[id]
	if !ok {
		return NewError(ErrorNotFound, "customer", "customer not found")
	}

	customer.Active = active

	return nil
}

func (f fakeTransactions) Create(_ context.Context, transaction *Transaction) error {
	if f.store.createTransactionErr != nil {
		return f.store.createTransactionErr
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}

	stored := *transaction
	f.store.transactions[transaction.ID] = &stored

	return nil
}

func (f fakeTransactions) MarkProcessed(_ context.Context, id uuid.UUID, appliedFee decimal.Decimal) error {
	if f.store.markProcessedErr != nil {
		return f.store.markProcessedErr
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	transaction, ok := f.store.transactions[id]
	if !ok {
		return NewError(ErrorNotFound, "transaction", "transaction not found")
	}

	transaction.Status = StatusProcessed
	transaction.ExpectedFee = appliedFee

	return nil
}

func (f fakeTransactions) MarkFailed(_ context.Context, id uuid.UUID) error {
	if f.store.markFailedErr != nil {
		return f.store.markFailedErr
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	transaction, ok := f.store.transactions[id]
	if !ok {
		return NewError(ErrorNotFound, "transaction", "transaction not found")
	}

	transaction.Status = StatusFailed

	return nil
}

func (f fakePayables) Create(_ context.Context, payable *Payable) error {
	if f.store.createPayableErr != nil {
		return f.store.createPayableErr
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if payable.ID == uuid.Nil {
		payable.ID = uuid.New()
	}

	if payable.CreatedAt.IsZero() {
		payable.CreatedAt = time.Now().UTC()
	}

	stored := *payable
	f.store.payables[payable.ID] = &stored

	return nil
}

func (f fakePayables) ListWaitingCreatedOn(_ context.Context, day time.Time) ([]Payable, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	wantYear, wantMonth, wantDay := day.UTC().Date()

	var result []Payable

	for _, payable := range f.store.payables {
		year, month, dayOfMonth := payable.CreatedAt.UTC().Date()
		if payable.Status == PayableWaitingFunds && year == wantYear && month == wantMonth && dayOfMonth == wantDay {
			result = append(result, *payable)
		}
	}

	return result, nil
}

func (f fakePayables) MarkPaid(_ context.Context, id uuid.UUID) error {
	if f.store.markPaidErr != nil {
		return f.store.markPaidErr
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	payable, ok := f.store.payables[id]
	if !ok {
		return NewError(ErrorNotFound, "payable", "payable not found")
	}

	payable.Status = PayablePaid

	return nil
}

func (f fakeLedger) CreateBalance(_ context.Context, customerID uuid.UUID) (*Balance, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	balance := &Balance{
		ID:           uuid.New(),
		CustomerID:   customerID,
		Available:    decimal.Zero,
		WaitingFunds: decimal.Zero,
	}
	f.store.balances[customerID] = balance

	created := *balance

	return &created, nil
}

func (f fakeLedger) FindBalanceByCustomer(_ context.Context, customerID uuid.UUID) (*Balance, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	balance, ok := f.store.balances[customerID]
	if !ok {
		return nil, NewError(ErrorNotFound, "balance", "balance not found for customer")
	}

	found := *balance

	return &found, nil
}

func (f fakeLedger) ApplyBalanceDelta(_ context.Context, customerID uuid.UUID, availableDelta, waitingDelta decimal.Decimal) (*Balance, error) {
	if err := f.store.applyDeltaErrs[customerID]; err != nil {
		return nil, err
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	balance, ok := f.store.balances[customerID]
	if !ok {
		return nil, NewError(ErrorNotFound, "balance", "balance not found for customer")
	}

	newAvailable := balance.Available.Add(availableDelta)
	newWaiting := balance.WaitingFunds.Add(waitingDelta)

	if newAvailable.IsNegative() || newWaiting.IsNegative() {
		return nil, NewError(ErrorInvalidBalance, "balance", "balance cannot go negative")
	}

	if newAvailable.GreaterThan(BalanceCeiling) || newWaiting.GreaterThan(BalanceCeiling) {
		return nil, NewError(ErrorInvalidBalance, "balance", "balance exceeds the system ceiling")
	}

	f.store.histories = append(f.store.histories, BalanceHistory{
		ID:           uuid.New(),
		BalanceID:    balance.ID,
		Available:    balance.Available,
		WaitingFunds: balance.WaitingFunds,
		CreatedAt:    time.Now().UTC(),
	})

	balance.Available = newAvailable
	balance.WaitingFunds = newWaiting

	mutated := *balance

	return &mutated, nil
}

func (f *fakeStore) balanceOf(customerID uuid.UUID) *Balance {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance := *f.balances[customerID]

	return &balance
}

func (f *fakeStore) transactionOf(id uuid.UUID) *Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	transaction := *f.transactions[id]

	return &transaction
}

func (f *fakeStore) payablesOf(customerID uuid.UUID) []Payable {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []Payable

	for _, payable := range f.payables {
		if payable.CustomerID == customerID {
			result = append(result, *payable)
		}
	}

	return result
}
