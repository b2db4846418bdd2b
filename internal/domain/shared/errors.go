package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error with a stable machine code.
//
// Errors created through the category constructors (NewValidationError,
// NewNotFoundError, NewConflictError, NewStateError) match their category
// sentinel with errors.Is, so callers can branch on the category without
// knowing every specific code.
type DomainError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	category *DomainError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError by code, or by this error's category
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	return e.category != nil && e.category.Code == t.Code
}

// Category returns the category sentinel, or the error itself when uncategorised
func (e *DomainError) Category() *DomainError {
	if e.category != nil {
		return e.category
	}
	return e
}

// NewDomainError creates a new uncategorised domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func newCategorised(category *DomainError, code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		category: category,
	}
}

// NewValidationError creates an error in the ErrInvalidInput category
func NewValidationError(code, format string, args ...any) *DomainError {
	return newCategorised(ErrInvalidInput, code, format, args...)
}

// NewNotFoundError creates an error in the ErrNotFound category
func NewNotFoundError(code, format string, args ...any) *DomainError {
	return newCategorised(ErrNotFound, code, format, args...)
}

// NewConflictError creates an error in the ErrAlreadyExists category
func NewConflictError(code, format string, args ...any) *DomainError {
	return newCategorised(ErrAlreadyExists, code, format, args...)
}

// NewStateError creates an error in the ErrInvalidState category
func NewStateError(code, format string, args ...any) *DomainError {
	return newCategorised(ErrInvalidState, code, format, args...)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrTenantRequired      = NewDomainError("TENANT_REQUIRED", "Tenant ID is required")
)
