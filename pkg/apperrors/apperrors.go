// Package apperrors defines the error kinds surfaced by the workflows and the HTTP API.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrExceedsContribution = errors.New("amount exceeds member contribution")
	ErrNotYetReleasable    = errors.New("group vault is not releasable yet")
	ErrConflict            = errors.New("conflicting concurrent update")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrLedgerRejected      = errors.New("ledger rejected the request")
)

// Error carries a kind plus a caller-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// New returns an error of the given kind with a caller-facing message.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that also wraps cause.
func Wrap(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Invalid is shorthand for an ErrInvalidPayload with a message.
func Invalid(message string) error {
	return New(ErrInvalidPayload, message)
}

// Persistence marks err as a persistence failure while keeping it inspectable.
func Persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}

// Message returns the caller-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

var codes = []struct {
	kind error
	code string
}{
	{ErrInvalidPayload, "invalid_payload"},
	{ErrUnauthorized, "unauthorized"},
	{ErrForbidden, "forbidden"},
	{ErrNotFound, "not_found"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrExceedsContribution, "exceeds_contribution"},
	{ErrNotYetReleasable, "not_yet_releasable"},
	{ErrConflict, "conflict"},
	{ErrLedgerRejected, "ledger_rejected"},
	{ErrPersistenceFailure, "persistence_failure"},
}

// Code returns the wire code of err's kind. Errors of no known kind are
// persistence failures.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return "persistence_failure"
}
