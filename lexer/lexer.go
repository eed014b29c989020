// Package lexer turns obelisk source text into tokens.
//
// Quoted names get no token of their own: a '"' comes back as a character
// token and the words inside it as ordinary identifiers and numbers. The
// parser joins them back together.
package lexer

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/teranos/obelisk/errors"
)

const (
	eof rune = -1
	bof rune = -2 // Nothing read yet
)

// Lexer reads tokens from a single source
type Lexer struct {
	name    string
	reader  *bufio.Reader
	closer  io.Closer
	tracker *PositionTracker

	ch rune // Lookahead character

	identifier string
	number     float64
	text       string
	start      Position
	end        Position
}

// New creates a lexer over r. name labels the source in errors.
func New(r io.Reader, name string) *Lexer {
	l := &Lexer{
		name:    name,
		reader:  bufio.NewReader(r),
		tracker: NewPositionTracker(),
		ch:      bof,
	}
	if c, ok := r.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Open creates a lexer over the file at path. The caller must Close it.
func Open(path string) (*Lexer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LexError{Kind: LexErrorOpen, Source: path, Err: errors.WithStack(err)}
	}
	return New(f, path), nil
}

// Close releases the underlying source if it is closable
func (l *Lexer) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// Name returns the source label
func (l *Lexer) Name() string {
	return l.name
}

// Identifier returns the text of the last identifier or keyword
func (l *Lexer) Identifier() string {
	return l.identifier
}

// Number returns the value of the last number
func (l *Lexer) Number() float64 {
	return l.number
}

// Text returns the raw text of the last token, empty at end of file
func (l *Lexer) Text() string {
	return l.text
}

// Position returns where the last token started
func (l *Lexer) Position() Position {
	return l.start
}

// Range returns the span of the last token
func (l *Lexer) Range() Range {
	return Range{Start: l.start, End: l.end}
}

// advance moves the lookahead one rune forward
func (l *Lexer) advance() error {
	if l.ch >= 0 {
		l.tracker.Advance(l.ch)
	}
	ch, _, err := l.reader.ReadRune()
	if err != nil {
		l.ch = eof
		if err == io.EOF {
			return nil
		}
		return &LexError{Kind: LexErrorRead, Source: l.name, Position: l.tracker.Mark(), Err: errors.WithStack(err)}
	}
	l.ch = ch
	return nil
}

// skipLine consumes a comment up to, not including, the line break
func (l *Lexer) skipLine() error {
	for l.ch != eof && l.ch != '\n' && l.ch != '\r' {
		if err := l.advance(); err != nil {
			return err
		}
	}
	return nil
}

// NextToken scans and returns the next token. Comments never surface.
func (l *Lexer) NextToken() (Token, error) {
	if l.ch == bof {
		if err := l.advance(); err != nil {
			return TokenEOF, err
		}
	}

	for {
		for unicode.IsSpace(l.ch) {
			if err := l.advance(); err != nil {
				return TokenEOF, err
			}
		}

		l.start = l.tracker.Mark()

		switch {
		case l.ch == eof:
			l.text = ""
			l.end = l.start
			return TokenEOF, nil

		case unicode.IsLetter(l.ch):
			return l.scanIdentifier()

		case unicode.IsDigit(l.ch) || l.ch == '.':
			return l.scanNumber()

		case l.ch == '#':
			if err := l.skipLine(); err != nil {
				return TokenEOF, err
			}
			continue

		case l.ch == '/':
			if err := l.advance(); err != nil {
				return TokenEOF, err
			}
			if l.ch == '/' {
				if err := l.skipLine(); err != nil {
					return TokenEOF, err
				}
				continue
			}
			// A single '/' is an ordinary character
			return l.char('/'), nil
		}

		ch := l.ch
		if err := l.advance(); err != nil {
			return TokenEOF, err
		}
		return l.char(ch), nil
	}
}

// char records a character token whose rune has already been consumed
func (l *Lexer) char(ch rune) Token {
	l.text = string(ch)
	l.end = l.tracker.Mark()
	return Token(ch)
}

func (l *Lexer) scanIdentifier() (Token, error) {
	var sb strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) {
		sb.WriteRune(l.ch)
		if err := l.advance(); err != nil {
			return TokenEOF, err
		}
	}
	l.identifier = sb.String()
	l.text = l.identifier
	l.end = l.tracker.Mark()

	if tok, ok := keywords[l.identifier]; ok {
		return tok, nil
	}
	return TokenIdentifier, nil
}

func (l *Lexer) scanNumber() (Token, error) {
	var sb strings.Builder
	dots := 0
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			dots++
		}
		sb.WriteRune(l.ch)
		if err := l.advance(); err != nil {
			return TokenEOF, err
		}
	}
	l.text = sb.String()
	l.end = l.tracker.Mark()

	// A '.' with no digits around it is punctuation
	if l.text == "." {
		return Token('.'), nil
	}

	if dots > 1 {
		return TokenNumber, &LexError{Kind: LexErrorNumber, Source: l.name, Text: l.text, Position: l.start}
	}

	value, err := strconv.ParseFloat(l.text, 64)
	if err != nil {
		return TokenNumber, &LexError{Kind: LexErrorNumber, Source: l.name, Text: l.text, Position: l.start, Err: err}
	}
	l.number = value
	return TokenNumber, nil
}
