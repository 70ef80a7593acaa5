package domain

import (
	"errors"
	"fmt"
)

// Error codes used across the service. The HTTP layer maps these to status
// codes; everything else treats them as opaque classifiers.
const (
	CodeValidation               = "VALIDATION_ERROR"
	CodeInvalidDateRange         = "INVALID_DATE_RANGE"
	CodeNotFound                 = "NOT_FOUND"
	CodeInsufficientAvailability = "INSUFFICIENT_AVAILABILITY"
	CodeLockTimeout              = "LOCK_TIMEOUT"
	CodeForbidden                = "FORBIDDEN"
	CodeInvalidState             = "INVALID_STATE"
	CodeInvalidStatus            = "INVALID_STATUS"
	CodeCancellationNotAllowed   = "CANCELLATION_NOT_ALLOWED"
	CodePaymentNotPayable        = "PAYMENT_NOT_PAYABLE"
	CodeConflict                 = "CONFLICT"
)

// Error is the domain error type carried across layer boundaries.
type Error struct {
	Code    string
	Message string
	// Details holds contextual fields (ids, requested vs available counts)
	// for building user-facing messages.
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail attaches a contextual field to the error and returns it.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates an error for invalid input data.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewInvalidDateRangeError creates an error for a stay range with no nights
// or with check-out on or before check-in.
func NewInvalidDateRangeError(checkIn, checkOut string) *Error {
	e := &Error{
		Code:    CodeInvalidDateRange,
		Message: "check-out date must be after check-in date",
	}
	return e.WithDetail("check_in", checkIn).WithDetail("check_out", checkOut)
}

// NewNotFoundError creates an error for a missing resource.
func NewNotFoundError(resource, id string) *Error {
	e := &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
	return e.WithDetail("resource", resource).WithDetail("id", id)
}

// NewInsufficientAvailabilityError creates an error for a room whose minimum
// spare units over the stay fall short of the requested quantity.
func NewInsufficientAvailabilityError(roomID string, requested, available int) *Error {
	e := &Error{
		Code:    CodeInsufficientAvailability,
		Message: fmt.Sprintf("room %s has %d unit(s) available, %d requested", roomID, available, requested),
	}
	return e.WithDetail("room_id", roomID).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewLockTimeoutError creates an error for a lock that could not be acquired
// within its bounded wait.
func NewLockTimeoutError(key string) *Error {
	e := &Error{
		Code:    CodeLockTimeout,
		Message: "could not acquire booking lock, try again shortly",
	}
	return e.WithDetail("key", key)
}

// NewForbiddenError creates an error for an ownership or role mismatch.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewInvalidStateError creates an error for an illegal status transition.
func NewInvalidStateError(from, to string) *Error {
	e := &Error{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
	return e.WithDetail("from", from).WithDetail("to", to)
}

// NewInvalidStatusError creates an error for an unrecognized status value.
func NewInvalidStatusError(value string) *Error {
	e := &Error{
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("invalid status value: %s", value),
	}
	return e.WithDetail("value", value)
}

// NewCancellationNotAllowedError creates an error for a cancellation that
// violates the cancellation policy.
func NewCancellationNotAllowedError(reason string) *Error {
	return &Error{Code: CodeCancellationNotAllowed, Message: reason}
}

// NewBookingNotModifiableError creates an error for an update attempt on a
// booking whose status or check-in proximity no longer allows changes.
func NewBookingNotModifiableError(reason string) *Error {
	return &Error{Code: CodeInvalidState, Message: reason}
}

// NewPaymentNotPayableError creates an error for a booking that cannot accept
// a payment in its current state.
func NewPaymentNotPayableError(reason string) *Error {
	return &Error{Code: CodePaymentNotPayable, Message: reason}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// CodeOf returns the domain error code of err, or the empty string if err is
// not a domain error.
func CodeOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
