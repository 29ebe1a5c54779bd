package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/RafaelEmery/payments-engine/pkg/log"
)

// CreateCustomerInput is the onboarding request.
type CreateCustomerInput struct {
	Name           string
	Type           CustomerType
	DocumentNumber string
}

// OnboardingService creates customers and their initial zeroed balance.
type OnboardingService struct {
	customers CustomerRepository
	ledger    LedgerRepository
	logger    log.Logger
}

// NewOnboardingService creates an onboarding service. logger may be nil.
func NewOnboardingService(customers CustomerRepository, ledger LedgerRepository, logger log.Logger) *OnboardingService {
	if logger == nil {
		logger = log.NewNop()
	}

	return &OnboardingService{customers: customers, ledger: ledger, logger: logger}
}

// CreateCustomer validates the customer type and document checksum,
// enforces document uniqueness, and creates the customer together with its
// zero balance.
func (s *OnboardingService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error) {
	if !input.Type.Valid() {
		return nil, NewError(ErrorInvalidInput, "customer", fmt.Sprintf("invalid customer type: %s", input.Type))
	}

	if !IsValidDocument(input.Type, input.DocumentNumber) {
		return nil, NewError(ErrorInvalidDocument, "customer", "invalid document number provided")
	}

	taken, err := s.customers.ExistsByDocument(ctx, cleanDocument(input.DocumentNumber))
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, NewError(ErrorDocumentTaken, "customer", "document number already registered")
	}

	customer := &Customer{
		Name:           input.Name,
		Type:           input.Type,
		DocumentNumber: cleanDocument(input.DocumentNumber),
		Active:         true,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	if _, err := s.ledger.CreateBalance(ctx, customer.ID); err != nil {
		return nil, err
	}

	s.logger.Log(ctx, log.LevelInfo, "customer onboarded",
		log.String("customer_id", customer.ID.String()),
		log.String("type", string(customer.Type)),
	)

	return customer, nil
}

// GetCustomer returns a customer by ID.
func (s *OnboardingService) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.customers.FindByID(ctx, id)
}

// GetBalance returns the balance owned by the given customer.
func (s *OnboardingService) GetBalance(ctx context.Context, customerID uuid.UUID) (*Balance, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	return s.ledger.FindBalanceByCustomer(ctx, customerID)
}

// SetCustomerActive toggles the active flag. Inactive customers are
// excluded from daily settlement.
func (s *OnboardingService) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return err
	}

	return s.customers.SetActive(ctx, id, active)
}
