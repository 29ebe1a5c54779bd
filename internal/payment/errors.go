package payment

import (
	"errors"
	"fmt"
)

// ErrorCode is a domain error code carried by every Error in this package.
type ErrorCode string

const (
	// ErrorNotFound indicates a referenced customer or balance does not exist.
	ErrorNotFound ErrorCode = "0001"
	// ErrorInvalidDocument indicates a document number failed checksum validation.
	ErrorInvalidDocument ErrorCode = "0002"
	// ErrorDocumentTaken indicates the document number is already registered.
	ErrorDocumentTaken ErrorCode = "0003"
	// ErrorInvalidMethod indicates an unknown payment method reached strategy dispatch.
	ErrorInvalidMethod ErrorCode = "0004"
	// ErrorTransactionCreation indicates the pending-transaction insert itself failed.
	ErrorTransactionCreation ErrorCode = "0005"
	// ErrorTransactionFailed indicates a failure during strategy execution;
	// the transaction row was marked failed before this surfaced.
	ErrorTransactionFailed ErrorCode = "0006"
	// ErrorInvalidBalance indicates a delta would make a balance field
	// negative or push it above the system ceiling.
	ErrorInvalidBalance ErrorCode = "0007"
	// ErrorInvalidInput indicates request payload validation failed.
	ErrorInvalidInput ErrorCode = "0008"
)

// Error is a structured domain error with a stable code, the entity it
// refers to, and an optional wrapped cause.
type Error struct {
	Code       ErrorCode
	EntityType string
	Message    string
	Err        error
}

// Error returns the formatted domain error string.
func (e Error) Error() string {
	if e.EntityType == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.EntityType)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e Error) Unwrap() error {
	return e.Err
}

// NewError creates a domain error with code, entity type, and message.
func NewError(code ErrorCode, entityType, message string) error {
	return Error{Code: code, EntityType: entityType, Message: message}
}

// WrapError creates a domain error that carries an underlying cause.
func WrapError(code ErrorCode, entityType, message string, err error) error {
	return Error{Code: code, EntityType: entityType, Message: message, Err: err}
}

// CodeOf extracts the domain error code from err, or "" when err does not
// carry one.
func CodeOf(err error) ErrorCode {
	var domainErr Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	return ""
}

// IsNotFound reports whether err represents a missing customer or balance.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrorNotFound
}

// IsTransactionFailed reports whether err represents a transaction that was
// created and then marked failed.
func IsTransactionFailed(err error) bool {
	return CodeOf(err) == ErrorTransactionFailed
}
