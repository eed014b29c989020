package parser

import (
	"strings"

	"github.com/teranos/obelisk/lexer"
)

// clauseState tracks where a fact clause is between tokens
type clauseState int

const (
	stateAwaitingEntity    clauseState = iota // Next must open a quoted name
	stateInQuote                              // Collecting the words of a name
	stateAwaitingVerbOrAnd                    // After a left entity
	stateAwaitingAndOrEnd                     // After a right entity
)

func (s clauseState) String() string {
	switch s {
	case stateAwaitingEntity:
		return "awaiting entity"
	case stateInQuote:
		return "in quote"
	case stateAwaitingVerbOrAnd:
		return "awaiting verb or 'and'"
	case stateAwaitingAndOrEnd:
		return "awaiting 'and' or end of clause"
	}
	return "unknown"
}

// joinWords rebuilds a quoted name. The lexer drops the whitespace between
// words, so they are joined by exactly one space.
func joinWords(words []string) string {
	return strings.Join(words, " ")
}

// clause is the "L" [and "L2"...] VERB "R" [and "R2"...] part of a statement
type clause struct {
	left  []string
	verb  string
	right []string
}

// terminator decides whether the current token ends a clause
type terminator struct {
	describe string
	matches  func(p *Parser) bool
}

var (
	endAtParen = terminator{describe: "')'", matches: func(p *Parser) bool { return p.current == ')' }}
	endAtIf    = terminator{describe: "'if'", matches: func(p *Parser) bool { return p.isWord(wordIf) }}
	endAtThen  = terminator{describe: "'then'", matches: func(p *Parser) bool { return p.isWord(wordThen) }}
)

// parseClause reads a clause starting at the current token and stops on the
// terminator, leaving it current. With multiple set, either side may list
// several entities joined by 'and'.
func (p *Parser) parseClause(multiple bool, end terminator) (clause, error) {
	var c clause
	var words []string
	state := stateAwaitingEntity

	for {
		switch state {
		case stateAwaitingEntity:
			switch {
			case p.current == '"':
				words = words[:0]
				state = stateInQuote
			case p.current == lexer.TokenEOF:
				return c, p.syntaxError("unexpected end of file")
			case c.verb == "" && len(c.left) == 0:
				return c, p.syntaxError("missing left side entities").
					WithSuggestion(`quote entity names, e.g. "chris"`)
			case c.verb != "" && len(c.right) == 0 && (end.matches(p) || p.current == ';'):
				return c, p.syntaxError("missing right side entities")
			default:
				return c, p.syntaxError("expected '\"' but got " + p.describeCurrent())
			}

		case stateInQuote:
			switch p.current {
			case '"':
				name := joinWords(words)
				if name == "" {
					return c, p.syntaxError("entity name is empty")
				}
				if c.verb == "" {
					c.left = append(c.left, name)
					state = stateAwaitingVerbOrAnd
				} else {
					c.right = append(c.right, name)
					state = stateAwaitingAndOrEnd
				}
			case lexer.TokenEOF:
				return c, p.syntaxError("unterminated quote")
			default:
				words = append(words, p.lex.Text())
			}

		case stateAwaitingVerbOrAnd:
			switch {
			case p.current == '"':
				return c, p.syntaxError("unexpected '\"'").
					WithSuggestion("separate entities with 'and'")
			case p.isWord(wordAnd):
				if !multiple {
					return c, p.syntaxError("only one left side entity is allowed")
				}
				state = stateAwaitingEntity
			case end.matches(p) || p.current == ';' || p.current == lexer.TokenEOF:
				return c, p.syntaxError("verb is empty")
			case p.isBareword():
				if !isAlphabetic(p.lex.Text()) {
					return c, p.syntaxError("verb must be alphabetic")
				}
				c.verb = p.lex.Text()
				state = stateAwaitingEntity
			default:
				if p.current == lexer.TokenNumber {
					return c, p.syntaxError("verb must be alphabetic")
				}
				return c, p.syntaxError("expected a verb but got " + p.describeCurrent())
			}

		case stateAwaitingAndOrEnd:
			switch {
			case end.matches(p):
				return c, nil
			case p.current == '"':
				return c, p.syntaxError("unexpected '\"'").
					WithSuggestion("separate entities with 'and'")
			case p.isWord(wordAnd):
				if !multiple {
					return c, p.syntaxError("only one right side entity is allowed")
				}
				state = stateAwaitingEntity
			default:
				return c, p.syntaxError("expected " + end.describe + " but got " + p.describeCurrent())
			}
		}

		if _, err := p.NextToken(); err != nil {
			return c, err
		}
	}
}
