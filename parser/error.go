package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/obelisk/lexer"
)

// ErrorContext indicates the environment where parser errors will be displayed
type ErrorContext string

const (
	// ErrorContextTerminal indicates errors will be displayed in terminal with ANSI colors
	ErrorContextTerminal ErrorContext = "terminal"
	// ErrorContextPlain indicates errors will be displayed without ANSI codes (logs, files)
	ErrorContextPlain ErrorContext = "plain"
)

// ErrorSeverity indicates the severity level of a parser error
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"   // Statement rejected
	SeverityWarning ErrorSeverity = "warning" // Statement accepted with caveats
)

// ErrorKind categorizes parser errors for programmatic handling
type ErrorKind string

const (
	ErrorKindSyntax     ErrorKind = "syntax"     // Grammar violation
	ErrorKindLexical    ErrorKind = "lexical"    // Malformed token inside a statement
	ErrorKindResolution ErrorKind = "resolution" // A name could not be turned into a row
)

// ParseError represents a structured parser error with metadata
type ParseError struct {
	Err         error                  // Underlying error
	Kind        ErrorKind              // Error category
	Severity    ErrorSeverity          // Error severity
	Message     string                 // Human-readable message
	Statement   string                 // Statement keyword: fact, rule or action
	Source      string                 // Source file
	Token       string                 // Text of the offending token (optional)
	Range       *lexer.Range           // Source range of the offending token (optional)
	Suggestions []string               // Possible fixes
	Context     map[string]interface{} // Additional debug context
	Timestamp   time.Time              // When error occurred
}

// Error implements error interface
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError generates context-appropriate error message
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminalError()
	}
	return e.formatPlainError()
}

func (e *ParseError) location() string {
	var loc string
	if e.Source != "" {
		loc = e.Source
	}
	if e.Range != nil {
		if loc != "" {
			loc += ":"
		}
		loc += e.Range.Start.String()
	}
	return loc
}

// formatPlainError creates a single-line error for logs
func (e *ParseError) formatPlainError() string {
	msg := e.Message
	if e.Statement != "" {
		msg = e.Statement + ": " + msg
	}
	if loc := e.location(); loc != "" {
		msg = loc + ": " + msg
	}
	if e.Token != "" {
		msg += fmt.Sprintf(" (near %q)", e.Token)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// formatTerminalError creates rich colored error for terminal
func (e *ParseError) formatTerminalError() string {
	var baseMsg string
	switch e.Severity {
	case SeverityError:
		baseMsg = pterm.Red(e.Message)
	case SeverityWarning:
		baseMsg = pterm.Yellow(e.Message)
	default:
		baseMsg = e.Message
	}

	context := fmt.Sprintf("\n\n%s", pterm.LightCyan("Context:"))
	if loc := e.location(); loc != "" {
		context += fmt.Sprintf("\n  %s %s", pterm.Yellow("Location:"), loc)
	}
	if e.Statement != "" {
		context += fmt.Sprintf("\n  %s %s", pterm.Yellow("Statement:"), e.Statement)
	}
	if e.Token != "" {
		context += fmt.Sprintf("\n  %s '%s'", pterm.Yellow("Token:"), e.Token)
	}

	if len(e.Suggestions) > 0 {
		context += fmt.Sprintf("\n\n%s", pterm.Green("Suggestions:"))
		for _, suggestion := range e.Suggestions {
			context += fmt.Sprintf("\n  • %s", suggestion)
		}
	}

	return fmt.Sprintf("%s%s", baseMsg, context)
}

// Unwrap for errors.Is/As compatibility
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Builder pattern for constructing ParseErrors

// NewParseError creates a new ParseError with the given kind and message
func NewParseError(kind ErrorKind, message string) *ParseError {
	return &ParseError{
		Kind:      kind,
		Severity:  SeverityError,
		Message:   message,
		Context:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// WithStatement names the statement being parsed
func (e *ParseError) WithStatement(keyword string) *ParseError {
	e.Statement = keyword
	return e
}

// WithSource sets the source file
func (e *ParseError) WithSource(source string) *ParseError {
	e.Source = source
	return e
}

// WithToken sets the text of the token that caused the error
func (e *ParseError) WithToken(text string) *ParseError {
	e.Token = text
	return e
}

// WithRange sets the source range of the offending token
func (e *ParseError) WithRange(r lexer.Range) *ParseError {
	e.Range = &r
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithContext adds debug context metadata
func (e *ParseError) WithContext(key string, value interface{}) *ParseError {
	e.Context[key] = value
	return e
}

// WithUnderlying sets the underlying error
func (e *ParseError) WithUnderlying(err error) *ParseError {
	e.Err = err
	return e
}
