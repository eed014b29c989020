package lexer

import "fmt"

// LexErrorKind categorizes lexer failures
type LexErrorKind string

const (
	LexErrorOpen   LexErrorKind = "open"   // Source could not be opened
	LexErrorRead   LexErrorKind = "read"   // Source failed mid-read
	LexErrorNumber LexErrorKind = "number" // Malformed number literal
)

// LexError is a lexer failure with its source location
type LexError struct {
	Kind     LexErrorKind
	Source   string   // File name or reader label
	Text     string   // Offending text, for number errors
	Position Position // Where the offending token started
	Err      error    // Underlying error
}

// Error implements error interface
func (e *LexError) Error() string {
	switch e.Kind {
	case LexErrorOpen:
		return fmt.Sprintf("could not open source %s: %v", e.Source, e.Err)
	case LexErrorNumber:
		return fmt.Sprintf("%s:%s: malformed number %q", e.Source, e.Position, e.Text)
	default:
		return fmt.Sprintf("%s:%s: %v", e.Source, e.Position, e.Err)
	}
}

// Unwrap for errors.Is/As compatibility
func (e *LexError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the source cannot be lexed any further.
// A malformed number only spoils the statement it appears in.
func (e *LexError) Fatal() bool {
	return e.Kind != LexErrorNumber
}
