package kb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

func TestResolve_Idempotent(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	for _, name := range []string{"chris", "martin cromer", "x", "ñandú"} {
		t.Run(name, func(t *testing.T) {
			e1, e2 := models.NewEntity(name), models.NewEntity(name)
			require.NoError(t, kb.ResolveEntity(ctx, &e1))
			require.NoError(t, kb.ResolveEntity(ctx, &e2))
			assert.NotZero(t, e1.ID)
			assert.Equal(t, e1.ID, e2.ID)

			v1, v2 := models.NewVerb(name), models.NewVerb(name)
			require.NoError(t, kb.ResolveVerb(ctx, &v1))
			require.NoError(t, kb.ResolveVerb(ctx, &v2))
			assert.Equal(t, v1.ID, v2.ID)

			a1, a2 := models.NewAction(name), models.NewAction(name)
			require.NoError(t, kb.ResolveAction(ctx, &a1))
			require.NoError(t, kb.ResolveAction(ctx, &a2))
			assert.Equal(t, a1.ID, a2.ID)
		})
	}
}

func TestResolveFact_ReassertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	first := assertFact(t, kb, "chris", "is", "happy", true)
	second := assertFact(t, kb, "chris", "is", "happy", true)
	assert.Equal(t, first.ID, second.ID)

	// A later mention as unasserted does not demote it
	third := assertFact(t, kb, "chris", "is", "happy", false)
	assert.Equal(t, first.ID, third.ID)
	assert.True(t, third.IsTrue)

	stats, err := kb.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Facts)
	assert.EqualValues(t, 1, stats.TrueFacts)
}

func TestResolveRule_ReasonEqualsFact(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	f := assertFact(t, kb, "x", "is", "y", false)
	rule := models.Rule{Fact: f, Reason: f}

	err := kb.ResolveRule(ctx, &rule)
	require.Error(t, err)
	assert.True(t, db.IsConstraint(err))
	assert.False(t, errors.IsUnresolvedError(err))
	assert.Zero(t, rule.ID)
}

func TestResolve_BlankNameIsConstraint(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	e := models.Entity{Name: ""}
	err := kb.ResolveEntity(ctx, &e)
	require.Error(t, err)
	assert.True(t, db.IsConstraint(err), fmt.Sprintf("%+v", err))
}

func TestResolveSuggestAction(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	f := assertFact(t, kb, "light", "is", "red", false)
	stop, gogo := models.NewAction("stop"), models.NewAction("go")
	require.NoError(t, kb.ResolveAction(ctx, &stop))
	require.NoError(t, kb.ResolveAction(ctx, &gogo))

	sa1 := models.SuggestAction{Fact: f, TrueAction: stop, FalseAction: gogo}
	sa2 := sa1
	require.NoError(t, kb.ResolveSuggestAction(ctx, &sa1))
	require.NoError(t, kb.ResolveSuggestAction(ctx, &sa2))
	assert.NotZero(t, sa1.ID)
	assert.Equal(t, sa1.ID, sa2.ID)
}
