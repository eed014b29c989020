package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestAs(t *testing.T) {
	original := &customError{msg: "custom"}
	wrapped := Wrap(original, "wrapped")

	var target *customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.msg)
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("error"), "try this fix")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "try this fix", hints[0])
}

func TestMark(t *testing.T) {
	base := New("table creation failed")
	marked := Mark(base, ErrInvalidRequest)

	assert.True(t, Is(marked, ErrInvalidRequest))
	assert.Equal(t, "table creation failed", marked.Error())
}

func TestStackTrace(t *testing.T) {
	err := Wrap(New("boom"), "context")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestSentinels(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := NewNotFoundError("fact %d", 7)
		assert.True(t, IsNotFoundError(err))
		assert.False(t, IsUnresolvedError(err))
		assert.Contains(t, err.Error(), "fact 7")
	})

	t.Run("unresolved", func(t *testing.T) {
		err := NewUnresolvedError("entity %q", "martin")
		assert.True(t, IsUnresolvedError(err))
		assert.Contains(t, err.Error(), `entity "martin"`)
	})

	t.Run("nil is never a sentinel", func(t *testing.T) {
		assert.False(t, IsNotFoundError(nil))
		assert.False(t, IsUnresolvedError(nil))
	})

	t.Run("invalid request", func(t *testing.T) {
		err := Wrap(NewInvalidRequestError("bad format %q", "xml"), "dump")
		assert.True(t, Is(err, ErrInvalidRequest))
	})
}
