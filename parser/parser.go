// Package parser reads fact, rule and action statements from a lexer and
// stores them in the knowledge base.
//
// Parsing a statement finishes before anything is written, and a
// statement's writes share one transaction, so a rejected statement leaves
// no rows behind.
package parser

import (
	"unicode"

	"go.uber.org/zap"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/lexer"
	"github.com/teranos/obelisk/logger"
)

// Words with grammatical meaning inside statements. They are ordinary
// identifiers to the lexer.
const (
	wordAnd  = "and"
	wordIf   = "if"
	wordThen = "then"
	wordElse = "else"
)

// Parser reads statements from one lexer
type Parser struct {
	lex     *lexer.Lexer
	current lexer.Token
	logger  *zap.SugaredLogger

	statement string // Keyword of the statement being parsed, for errors
}

// New creates a parser over lex. If logger is nil, operates silently.
func New(lex *lexer.Lexer, log *zap.SugaredLogger) *Parser {
	return &Parser{
		lex:     lex,
		current: lexer.TokenEOF,
		logger:  logger.OrNop(log),
	}
}

// Lexer returns the lexer the parser reads from
func (p *Parser) Lexer() *lexer.Lexer {
	return p.lex
}

// Current returns the token the parser is looking at
func (p *Parser) Current() lexer.Token {
	return p.current
}

// NextToken advances to the next token. A malformed number becomes a
// lexical ParseError; a failing source is returned as the *lexer.LexError.
func (p *Parser) NextToken() (lexer.Token, error) {
	tok, err := p.lex.NextToken()
	p.current = tok
	if err == nil {
		return tok, nil
	}

	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) && !lexErr.Fatal() {
		return tok, NewParseError(ErrorKindLexical, lexErr.Error()).
			WithStatement(p.statement).
			WithSource(p.lex.Name()).
			WithToken(lexErr.Text).
			WithRange(p.lex.Range()).
			WithUnderlying(lexErr)
	}
	return tok, err
}

// SkipStatement advances past the next ';' or to end of file, whichever
// comes first. Malformed tokens on the way are ignored.
func (p *Parser) SkipStatement() error {
	for p.current != ';' {
		if _, err := p.NextToken(); err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return err
		}
		if p.current == lexer.TokenEOF {
			return nil
		}
	}
	return nil
}

// syntaxError builds a syntax error located at the current token
func (p *Parser) syntaxError(message string) *ParseError {
	return NewParseError(ErrorKindSyntax, message).
		WithStatement(p.statement).
		WithSource(p.lex.Name()).
		WithToken(p.lex.Text()).
		WithRange(p.lex.Range())
}

// expect fails unless the current token is want
func (p *Parser) expect(want lexer.Token) error {
	if p.current == want {
		return nil
	}
	return p.syntaxError("expected " + want.String() + " but got " + p.describeCurrent())
}

// expectWord fails unless the current token is the bare word want
func (p *Parser) expectWord(want string) error {
	if p.isWord(want) {
		return nil
	}
	return p.syntaxError("expected '" + want + "' but got " + p.describeCurrent()).
		WithSuggestion("insert '" + want + "'")
}

func (p *Parser) describeCurrent() string {
	switch {
	case p.current == lexer.TokenEOF:
		return "end of file"
	case p.current.IsChar():
		return p.current.String()
	default:
		return "'" + p.lex.Text() + "'"
	}
}

// isBareword reports whether the current token is a word outside quotes
func (p *Parser) isBareword() bool {
	return p.current == lexer.TokenIdentifier || p.current.IsKeyword()
}

// isWord reports whether the current token is the bare word w
func (p *Parser) isWord(w string) bool {
	return p.isBareword() && p.lex.Text() == w
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
