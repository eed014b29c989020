package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: 0},
		{name: "Console output mode", jsonOutput: false, verbosity: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			err := Initialize(tt.jsonOutput, tt.verbosity)
			require.NoError(t, err)
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Cleanup()
			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(LevelName(tt.verbosity), func(t *testing.T) {
			assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity))
		})
	}
}

func TestShouldLogTrace(t *testing.T) {
	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithComponent(ctx, "compiler")

	FromContext(ctx, base).Infow("compiled", FieldCount, 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-1", fields[FieldRunID])
	assert.Equal(t, "compiler", fields[FieldComponent])
	assert.EqualValues(t, 3, fields[FieldCount])
}

func TestFromContext_NoFields(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	assert.Same(t, base, FromContext(context.Background(), base))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewNop().Sugar()
	assert.Same(t, l, OrNop(l))
}

func TestWithSymbol(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	AddDBSymbol(base).Debugw("Schema applied")
	AddWatchSymbol(base).Infow("Source changed")
	WithSymbol(nil, "x").Infow("dropped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "⊔", entries[0].ContextMap()[FieldSymbol])
	assert.Equal(t, "꩜", entries[1].ContextMap()[FieldSymbol])
	assert.Equal(t, "Schema applied", entries[0].Message)
}

func TestSymbolInfow(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	old := Logger
	Logger = zap.New(core).Sugar()
	t.Cleanup(func() { Logger = old })

	SymbolInfow("✿", "Compile started", FieldCount, 2)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "✿", entries[0].ContextMap()[FieldSymbol])
}
