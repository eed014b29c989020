package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

func TestQueryFact(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	stored := assertFact(t, kb, "martin cromer", "is", "tall", true)

	got, err := kb.QueryFact(ctx, "martin cromer", "is", "tall")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.True(t, got.IsTrue)

	_, err = kb.QueryFact(ctx, "martin cromer", "is", "short")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestQuerySuggestAction(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	f := assertFact(t, kb, "light", "is", "red", false)
	sa := models.SuggestAction{Fact: f, TrueAction: models.NewAction("stop"), FalseAction: models.NewAction("go")}
	require.NoError(t, kb.ResolveAction(ctx, &sa.TrueAction))
	require.NoError(t, kb.ResolveAction(ctx, &sa.FalseAction))
	require.NoError(t, kb.ResolveSuggestAction(ctx, &sa))

	action, err := kb.QuerySuggestAction(ctx, models.NewFact("light", "is", "red"))
	require.NoError(t, err)
	assert.Equal(t, "go", action)

	assertFact(t, kb, "light", "is", "red", true)
	action, err = kb.QuerySuggestAction(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, "stop", action)

	t.Run("unknown fact", func(t *testing.T) {
		_, err := kb.QuerySuggestAction(ctx, models.NewFact("light", "is", "blue"))
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("fact without suggestion", func(t *testing.T) {
		plain := assertFact(t, kb, "sky", "is", "blue", true)
		_, err := kb.QuerySuggestAction(ctx, plain)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	consequent := assertFact(t, kb, "p", "can", "die", false)
	reason := assertFact(t, kb, "e", "is", "dangerous", true)
	addRule(t, kb, consequent, reason)

	stats, err := kb.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Entities:  4,
		Verbs:     2,
		Facts:     2,
		TrueFacts: 1,
		Rules:     1,
	}, stats)
}
