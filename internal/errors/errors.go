package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// InvalidTransitionError is returned when an item status change is not the
// immediate successor of the persisted status, or the item is already paid.
type InvalidTransitionError struct {
	Message string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

func NewInvalidTransitionError(message, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Message: message,
		From:    from,
		To:      to,
	}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var ite *InvalidTransitionError
	if stderrors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}

// StaleStateError means a conditional update lost a race. The caller must
// refetch and retry.
type StaleStateError struct {
	Message string
}

func (e *StaleStateError) Error() string {
	return e.Message
}

func NewStaleStateError(message string) *StaleStateError {
	return &StaleStateError{Message: message}
}

func IsStaleStateError(err error) (*StaleStateError, bool) {
	var sse *StaleStateError
	if stderrors.As(err, &sse) {
		return sse, true
	}
	return nil, false
}

type NotPayableError struct {
	Message string
	ItemIDs []uint64
}

func (e *NotPayableError) Error() string {
	return e.Message
}

func NewNotPayableError(message string, itemIDs ...uint64) *NotPayableError {
	return &NotPayableError{
		Message: message,
		ItemIDs: itemIDs,
	}
}

func IsNotPayableError(err error) (*NotPayableError, bool) {
	var npe *NotPayableError
	if stderrors.As(err, &npe) {
		return npe, true
	}
	return nil, false
}

type InvalidSplitError struct {
	Message string
}

func (e *InvalidSplitError) Error() string {
	return e.Message
}

func NewInvalidSplitError(message string) *InvalidSplitError {
	return &InvalidSplitError{Message: message}
}

func IsInvalidSplitError(err error) (*InvalidSplitError, bool) {
	var ise *InvalidSplitError
	if stderrors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

func IsAuthorizationError(err error) (*AuthorizationError, bool) {
	var ae *AuthorizationError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StoreError wraps a persistence failure. A transaction that produced one
// has been rolled back.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{
		Message: message,
		Cause:   cause,
	}
}

func IsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsDomainError reports whether err belongs to the taxonomy above and should
// reach the caller unchanged.
// WrapStoreError returns domain errors unchanged and wraps any other failure
// as a StoreError. Reads that run outside a transaction use it.
func WrapStoreError(message string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return NewStoreError(message, err)
}

func IsDomainError(err error) bool {
	if _, ok := IsValidationError(err); ok {
		return true
	}
	if _, ok := IsNotFoundError(err); ok {
		return true
	}
	if _, ok := IsInvalidTransitionError(err); ok {
		return true
	}
	if _, ok := IsStaleStateError(err); ok {
		return true
	}
	if _, ok := IsNotPayableError(err); ok {
		return true
	}
	if _, ok := IsInvalidSplitError(err); ok {
		return true
	}
	if _, ok := IsAuthorizationError(err); ok {
		return true
	}
	if _, ok := IsStoreError(err); ok {
		return true
	}
	return false
}
