package lexer

import "fmt"

// Token identifies what the lexer recognized. Named tokens are negative;
// any other non-whitespace character is returned as its own positive rune value.
type Token int

const (
	TokenEOF        Token = -1
	TokenFact       Token = -2
	TokenRule       Token = -3
	TokenAction     Token = -4
	TokenDef        Token = -5 // Reserved, drives no behavior
	TokenExtern     Token = -6 // Reserved, drives no behavior
	TokenIdentifier Token = -7
	TokenNumber     Token = -8
)

// keywords maps reserved words to their tokens
var keywords = map[string]Token{
	"fact":   TokenFact,
	"rule":   TokenRule,
	"action": TokenAction,
	"def":    TokenDef,
	"extern": TokenExtern,
}

// IsKeyword reports whether word is reserved
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// IsChar reports whether t is a raw character token
func (t Token) IsChar() bool {
	return t > 0
}

// IsKeyword reports whether t is one of the reserved-word tokens
func (t Token) IsKeyword() bool {
	return t <= TokenFact && t >= TokenExtern
}

// String returns a readable name for diagnostics
func (t Token) String() string {
	switch t {
	case TokenEOF:
		return "end of file"
	case TokenFact:
		return "fact"
	case TokenRule:
		return "rule"
	case TokenAction:
		return "action"
	case TokenDef:
		return "def"
	case TokenExtern:
		return "extern"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	}
	if t.IsChar() {
		return fmt.Sprintf("'%c'", rune(t))
	}
	return fmt.Sprintf("token(%d)", int(t))
}
