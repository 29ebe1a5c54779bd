// Package api exposes the payments HTTP surface on fiber: customer
// onboarding, balance lookup, and transaction processing.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/RafaelEmery/payments-engine/internal/payment"
)

// CreateCustomerRequest is the onboarding payload.
type CreateCustomerRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Type           string `json:"type" validate:"required,oneof=individual corporate"`
	DocumentNumber string `json:"document_number" validate:"required,max=20"`
}

// CreateTransactionRequest is the payment payload. The document-free card
// block is passed through to the processor untouched.
type CreateTransactionRequest struct {
	CustomerID           string          `json:"customer_id" validate:"required,uuid"`
	Value                decimal.Decimal `json:"value" validate:"positive_decimal,bounded_decimal"`
	Currency             string          `json:"currency" validate:"omitempty,len=3"`
	Description          string          `json:"description" validate:"required,max=255"`
	Method               string          `json:"method" validate:"required,oneof=credit_card debit_card"`
	CardNumber           string          `json:"card_number" validate:"required,max=20"`
	CardOwner            string          `json:"card_owner" validate:"required,max=100"`
	CardExpirationYear   string          `json:"card_expiration_year" validate:"required,len=4"`
	CardVerificationCode string          `json:"card_verification_code" validate:"required,min=3,max=4"`
}

// SetCustomerActiveRequest toggles settlement eligibility for a customer.
type SetCustomerActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CustomerResponse is the customer read model. The document number is
// write-only and never echoed back.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// BalanceResponse is the ledger read model for one customer.
type BalanceResponse struct {
	CustomerID   string          `json:"customer_id"`
	Available    decimal.Decimal `json:"available"`
	WaitingFunds decimal.Decimal `json:"waiting_funds"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toCustomerResponse(customer *payment.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID.String(),
		Name:      customer.Name,
		Type:      string(customer.Type),
		Active:    customer.Active,
		CreatedAt: customer.CreatedAt,
	}
}

func toBalanceResponse(balance *payment.Balance) BalanceResponse {
	return BalanceResponse{
		CustomerID:   balance.CustomerID.String(),
		Available:    balance.Available,
		WaitingFunds: balance.WaitingFunds,
		UpdatedAt:    balance.UpdatedAt,
	}
}
