package lexer

import "fmt"

// Position represents a line/column position in source text
// Uses LSP conventions: 1-based line numbers, 0-based character offsets
type Position struct {
	Line      int `json:"line"`      // 1-based line number
	Character int `json:"character"` // 0-based character offset within line
	Offset    int `json:"offset"`    // 0-based byte offset in entire source
}

// String renders the position as "line:column" with a 1-based column
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character+1)
}

// Range represents a source span from start to end position
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// PositionTracker maintains line/column/offset state while the lexer reads runes
type PositionTracker struct {
	line      int // 1-based
	character int // 0-based within line
	offset    int // 0-based in source
}

// NewPositionTracker creates a tracker at the beginning of a source
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{line: 1}
}

// Advance moves past one consumed rune.
// '\n' starts a new line; a lone '\r' does not.
func (pt *PositionTracker) Advance(ch rune) {
	if ch == '\n' {
		pt.line++
		pt.character = 0
	} else {
		pt.character++
	}
	pt.offset += len(string(ch)) // Handle multi-byte UTF-8
}

// Mark returns the current position snapshot
func (pt *PositionTracker) Mark() Position {
	return Position{
		Line:      pt.line,
		Character: pt.character,
		Offset:    pt.offset,
	}
}
