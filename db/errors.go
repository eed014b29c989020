package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/obelisk/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed
// or never-opened database.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed.
// The string fallback covers errors raised by database/sql itself, which we
// cannot wrap at the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// ErrorKind classifies failures reported by the store
type ErrorKind string

const (
	KindBusy       ErrorKind = "busy"       // Database locked by another connection
	KindTooBig     ErrorKind = "too_big"    // String or blob exceeds limits
	KindRange      ErrorKind = "range"      // Bind parameter index out of range
	KindNoMemory   ErrorKind = "no_memory"  // Allocation failed
	KindMisuse     ErrorKind = "misuse"     // Library routine called incorrectly
	KindConstraint ErrorKind = "constraint" // Unique, foreign key, check or not-null violation
	KindGeneric    ErrorKind = "generic"    // Anything else
)

// ConstraintKind narrows a KindConstraint error
type ConstraintKind string

const (
	ConstraintNone       ConstraintKind = ""
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintOther      ConstraintKind = "other"
)

// defaultMessages mirror the wording users see when the driver gives no detail
var defaultMessages = map[ErrorKind]string{
	KindBusy:       "database was busy and operation was not performed",
	KindTooBig:     "size of string or blob exceeds limits",
	KindRange:      "parameter index is out of range",
	KindNoMemory:   "not enough memory for operation",
	KindMisuse:     "misuse of the database routine",
	KindConstraint: "a constraint violation occurred",
	KindGeneric:    "an unknown database error occurred",
}

// StoreError is a classified store failure. Callers match on Kind (and
// Constraint), never on the driver's error type.
type StoreError struct {
	Kind       ErrorKind
	Constraint ConstraintKind
	Op         string // Operation that failed, e.g. "insert entity"
	Message    string // Driver message, e.g. "UNIQUE constraint failed: entity.name"
	Err        error  // Underlying driver error
}

// Error implements error interface
func (e *StoreError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessages[e.Kind]
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap for errors.Is/As compatibility
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Classify translates a driver error into a *StoreError.
// nil, sql.ErrNoRows and errors that are already classified pass through
// unchanged; a closed database is marked with ErrDatabaseClosed.
func Classify(op string, err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var already *StoreError
	if errors.As(err, &already) {
		return err
	}

	if IsDatabaseClosed(err) {
		return errors.Mark(&StoreError{Kind: KindMisuse, Op: op, Message: err.Error(), Err: err}, ErrDatabaseClosed)
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return &StoreError{Kind: KindGeneric, Op: op, Message: err.Error(), Err: err}
	}

	storeErr := &StoreError{Op: op, Message: sqliteErr.Error(), Err: err}
	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		storeErr.Kind = KindBusy
	case sqlite3.ErrTooBig:
		storeErr.Kind = KindTooBig
	case sqlite3.ErrRange:
		storeErr.Kind = KindRange
	case sqlite3.ErrNomem:
		storeErr.Kind = KindNoMemory
	case sqlite3.ErrMisuse:
		storeErr.Kind = KindMisuse
	case sqlite3.ErrConstraint:
		storeErr.Kind = KindConstraint
		storeErr.Constraint = constraintKind(sqliteErr)
	default:
		storeErr.Kind = KindGeneric
	}
	return storeErr
}

func constraintKind(err sqlite3.Error) ConstraintKind {
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return ConstraintUnique
	case sqlite3.ErrConstraintForeignKey:
		return ConstraintForeignKey
	case sqlite3.ErrConstraintCheck:
		return ConstraintCheck
	case sqlite3.ErrConstraintNotNull:
		return ConstraintNotNull
	}

	// Extended codes are missing when the error was built by hand; fall back on the message
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "UNIQUE constraint failed"):
		return ConstraintUnique
	case strings.HasPrefix(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case strings.HasPrefix(msg, "CHECK constraint failed"):
		return ConstraintCheck
	case strings.HasPrefix(msg, "NOT NULL constraint failed"):
		return ConstraintNotNull
	}
	return ConstraintOther
}

// KindOf returns the store error kind of err, or "" if err is not a store error
func KindOf(err error) ErrorKind {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return ""
}

// IsConstraint reports whether err is a constraint violation of any sort
func IsConstraint(err error) bool {
	return KindOf(err) == KindConstraint
}

// IsUniqueViolationOn reports whether err is a unique violation on exactly
// the given key, written the way SQLite names it: "entity.name" or
// "fact.left_entity, fact.right_entity, fact.verb".
func IsUniqueViolationOn(err error, key string) bool {
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		return false
	}
	return storeErr.Kind == KindConstraint &&
		storeErr.Constraint == ConstraintUnique &&
		storeErr.Message == "UNIQUE constraint failed: "+key
}
