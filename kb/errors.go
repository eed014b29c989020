package kb

import (
	"fmt"

	"github.com/teranos/obelisk/errors"
)

// SchemaError means the knowledge base could not be opened or bootstrapped.
// It is fatal for the whole run.
type SchemaError struct {
	Path string
	Err  error
}

// Error implements error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("knowledge base %s could not be opened: %v", e.Path, e.Err)
}

// Unwrap for errors.Is/As compatibility
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsSchemaError checks if an error is or wraps a *SchemaError
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}
