package compiler

import (
	"fmt"
	"strings"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/parser"
)

// CompileError is returned when at least one statement was rejected.
// Accepted statements stay committed.
type CompileError struct {
	Errors []error
}

// Error implements error interface
func (e *CompileError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("1 statement failed: %v", e.Errors[0])
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d statements failed:\n  %s", len(e.Errors), strings.Join(msgs, "\n  "))
}

// Unwrap exposes every statement error to errors.Is/As
func (e *CompileError) Unwrap() []error {
	return e.Errors
}

// IsCompileError reports whether err carries rejected statements
func IsCompileError(err error) bool {
	var compileErr *CompileError
	return errors.As(err, &compileErr)
}

// isStatementError reports whether err rejects one statement only.
// Everything else (unreadable sources, a broken store) ends the run.
func isStatementError(err error) bool {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return true
	}
	return db.IsConstraint(err) || errors.IsUnresolvedError(err)
}
