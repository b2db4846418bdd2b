package dto

import (
	"errors"
	"net/http"

	"github.com/dealledger/backend/internal/domain/shared"
)

// Transport error codes. Domain errors keep their own codes in responses.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// GetHTTPStatus maps an error to its HTTP status. Lookups go by category so
// every specific domain code lands in the right class.
func GetHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAlreadyExists), errors.Is(err, shared.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidState):
		return http.StatusBadRequest
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorInfoFor builds the error body for err. Unknown errors are reported as
// internal without leaking their message.
func ErrorInfoFor(err error, requestID string) (int, Response) {
	status := GetHTTPStatus(err)
	var de *shared.DomainError
	if status != http.StatusInternalServerError && errors.As(err, &de) {
		return status, NewErrorResponseWithRequestID(de.Code, err.Error(), requestID)
	}
	return http.StatusInternalServerError,
		NewErrorResponseWithRequestID(ErrCodeInternal, "An unexpected error occurred", requestID)
}
