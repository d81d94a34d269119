package shared

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// IsNotFound reports whether the error is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == "NOT_FOUND"
	}
	return false
}

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", message)
}

// NewInvalidTransitionError creates an INVALID_TRANSITION error naming
// the current and attempted states
func NewInvalidTransitionError(current, attempted string) *DomainError {
	return NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition from %s to %s", current, attempted))
}

// NewInfeasibleDeliveryError creates an INFEASIBLE_DELIVERY error carrying
// both the earliest possible and the requested delivery dates so the caller
// can renegotiate
func NewInfeasibleDeliveryError(earliest, requested time.Time) *DomainError {
	return NewDomainError("INFEASIBLE_DELIVERY",
		fmt.Sprintf("Requested delivery date %s cannot be met, earliest possible is %s",
			requested.Format("2006-01-02"), earliest.Format("2006-01-02")))
}
