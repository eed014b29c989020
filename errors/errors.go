// Package errors provides error handling for obelisk.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//   - Marking errors so they match sentinels through errors.Is
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := kb.AddFacts(ctx, facts); err != nil {
//	    return errors.Wrap(err, "failed to add facts")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check the knowledge base path")
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnresolved) {
//	    // handle get-or-create failure
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	CombineErrors = crdb.CombineErrors
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	Mark           = crdb.Mark
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Assertions
var AssertionFailedf = crdb.AssertionFailedf

// Common sentinel errors for use across obelisk.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested row does not exist
	ErrNotFound = New("not found")

	// ErrUnresolved indicates get-or-create produced no identifier:
	// both the insert and the fallback select came back empty
	ErrUnresolved = New("could not be resolved")

	// ErrInvalidRequest indicates the input was malformed or invalid
	ErrInvalidRequest = New("invalid request")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsUnresolvedError checks if an error is or wraps ErrUnresolved.
func IsUnresolvedError(err error) bool {
	return err != nil && Is(err, ErrUnresolved)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewUnresolvedError creates an unresolved error naming what failed to resolve
func NewUnresolvedError(format string, args ...interface{}) error {
	return Wrap(ErrUnresolved, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
