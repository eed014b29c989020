package lexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/obelisk/errors"
)

type lexed struct {
	Token Token
	Text  string
}

func lexAll(t *testing.T, src string) []lexed {
	t.Helper()
	l := New(strings.NewReader(src), "test.obk")
	var out []lexed
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		out = append(out, lexed{tok, l.Text()})
		if tok == TokenEOF {
			return out
		}
	}
}

func TestNextToken(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []lexed
	}{
		{
			name: "fact statement",
			src:  `fact("chris" is "happy");`,
			want: []lexed{
				{TokenFact, "fact"}, {'(', "("},
				{'"', `"`}, {TokenIdentifier, "chris"}, {'"', `"`},
				{TokenIdentifier, "is"},
				{'"', `"`}, {TokenIdentifier, "happy"}, {'"', `"`},
				{')', ")"}, {';', ";"}, {TokenEOF, ""},
			},
		},
		{
			name: "keywords are distinct",
			src:  "fact rule action def extern facts",
			want: []lexed{
				{TokenFact, "fact"}, {TokenRule, "rule"}, {TokenAction, "action"},
				{TokenDef, "def"}, {TokenExtern, "extern"}, {TokenIdentifier, "facts"},
				{TokenEOF, ""},
			},
		},
		{
			name: "alphanumeric identifier",
			src:  "abc123 x9y",
			want: []lexed{{TokenIdentifier, "abc123"}, {TokenIdentifier, "x9y"}, {TokenEOF, ""}},
		},
		{
			name: "hash comment",
			src:  "# a comment\nfact # trailing\n;",
			want: []lexed{{TokenFact, "fact"}, {';', ";"}, {TokenEOF, ""}},
		},
		{
			name: "slash comment",
			src:  "// whole line\r\naction",
			want: []lexed{{TokenAction, "action"}, {TokenEOF, ""}},
		},
		{
			name: "single slash is a character",
			src:  "a/b",
			want: []lexed{{TokenIdentifier, "a"}, {'/', "/"}, {TokenIdentifier, "b"}, {TokenEOF, ""}},
		},
		{
			name: "comment at end of file",
			src:  "fact // nothing after",
			want: []lexed{{TokenFact, "fact"}, {TokenEOF, ""}},
		},
		{
			name: "numbers",
			src:  "42 3.14 .5",
			want: []lexed{{TokenNumber, "42"}, {TokenNumber, "3.14"}, {TokenNumber, ".5"}, {TokenEOF, ""}},
		},
		{
			name: "lone dot",
			src:  "Mr. Smith",
			want: []lexed{{TokenIdentifier, "Mr"}, {'.', "."}, {TokenIdentifier, "Smith"}, {TokenEOF, ""}},
		},
		{
			name: "other characters pass through",
			src:  "@,-",
			want: []lexed{{'@', "@"}, {',', ","}, {'-', "-"}, {TokenEOF, ""}},
		},
		{
			name: "empty source",
			src:  "   \n\t ",
			want: []lexed{{TokenEOF, ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexAll(t, tt.src)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNextToken_RetainsValues(t *testing.T) {
	l := New(strings.NewReader("martin 2.5 ;"), "test")

	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenIdentifier, tok)
	assert.Equal(t, "martin", l.Identifier())

	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenNumber, tok)
	assert.Equal(t, 2.5, l.Number())
	assert.Equal(t, "martin", l.Identifier(), "identifier survives a number token")

	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, Token(';'), tok)

	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenEOF, tok)

	// End of file is sticky
	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenEOF, tok)
}

func TestNextToken_MalformedNumber(t *testing.T) {
	l := New(strings.NewReader("fact 1.2.3 ;"), "bad.obk")

	_, err := l.NextToken()
	require.NoError(t, err)

	tok, err := l.NextToken()
	require.Error(t, err)
	assert.Equal(t, TokenNumber, tok)

	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, LexErrorNumber, lexErr.Kind)
	assert.Equal(t, "1.2.3", lexErr.Text)
	assert.Equal(t, Position{Line: 1, Character: 5, Offset: 5}, lexErr.Position)
	assert.False(t, lexErr.Fatal())
	assert.Contains(t, err.Error(), "bad.obk:1:6")

	// Lexing continues after the bad literal
	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, Token(';'), tok)
}

func TestNextToken_Positions(t *testing.T) {
	l := New(strings.NewReader("fact\n  (\"é\" x)"), "pos")

	want := []Position{
		{Line: 1, Character: 0, Offset: 0},  // fact
		{Line: 2, Character: 2, Offset: 7},  // (
		{Line: 2, Character: 3, Offset: 8},  // "
		{Line: 2, Character: 4, Offset: 9},  // é
		{Line: 2, Character: 5, Offset: 11}, // "
		{Line: 2, Character: 7, Offset: 13}, // x
	}
	for i, pos := range want {
		_, err := l.NextToken()
		require.NoError(t, err)
		assert.Equal(t, pos, l.Position(), "token %d", i)
	}
}

func TestRange(t *testing.T) {
	l := New(strings.NewReader("  verb"), "r")
	_, err := l.NextToken()
	require.NoError(t, err)

	r := l.Range()
	assert.Equal(t, 2, r.Start.Character)
	assert.Equal(t, 6, r.End.Character)
}

func TestOpen(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.obk"))
		require.Error(t, err)

		var lexErr *LexError
		require.True(t, errors.As(err, &lexErr))
		assert.Equal(t, LexErrorOpen, lexErr.Kind)
		assert.True(t, lexErr.Fatal())
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("reads and closes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ok.obk")
		require.NoError(t, os.WriteFile(path, []byte("rule"), 0o644))

		l, err := Open(path)
		require.NoError(t, err)
		assert.Equal(t, path, l.Name())

		tok, err := l.NextToken()
		require.NoError(t, err)
		assert.Equal(t, TokenRule, tok)

		require.NoError(t, l.Close())
		require.NoError(t, l.Close(), "second close is a no-op")
	})
}

func TestToken(t *testing.T) {
	assert.True(t, Token('(').IsChar())
	assert.False(t, TokenIdentifier.IsChar())
	assert.True(t, TokenFact.IsKeyword())
	assert.True(t, TokenExtern.IsKeyword())
	assert.False(t, TokenIdentifier.IsKeyword())
	assert.False(t, TokenEOF.IsKeyword())

	assert.Equal(t, "'('", Token('(').String())
	assert.Equal(t, "end of file", TokenEOF.String())
	assert.Equal(t, "rule", TokenRule.String())

	assert.True(t, IsKeyword("action"))
	assert.False(t, IsKeyword("if"))
}
