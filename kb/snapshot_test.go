package kb

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

func populate(t *testing.T, kb *KnowledgeBase) {
	t.Helper()
	ctx := context.Background()

	consequent := assertFact(t, kb, "player", "can", "die", false)
	reason := assertFact(t, kb, "enemy", "is", "dangerous", true)
	addRule(t, kb, consequent, reason)

	sa := models.SuggestAction{Fact: reason, TrueAction: models.NewAction("flee"), FalseAction: models.NewAction("fight")}
	require.NoError(t, kb.ResolveAction(ctx, &sa.TrueAction))
	require.NoError(t, kb.ResolveAction(ctx, &sa.FalseAction))
	require.NoError(t, kb.ResolveSuggestAction(ctx, &sa))
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)
	populate(t, kb)

	snap, err := kb.Snapshot(ctx)
	require.NoError(t, err)

	want := &Snapshot{
		Version:  SnapshotVersion,
		Entities: []string{"player", "die", "enemy", "dangerous"},
		Verbs:    []string{"can", "is"},
		Actions:  []string{"flee", "fight"},
		Facts: []SnapshotFact{
			{Left: "player", Verb: "can", Right: "die"},
			{Left: "enemy", Verb: "is", Right: "dangerous", IsTrue: true},
		},
		Rules: []SnapshotRule{{
			Fact:   SnapshotFact{Left: "player", Verb: "can", Right: "die"},
			Reason: SnapshotFact{Left: "enemy", Verb: "is", Right: "dangerous"},
		}},
		SuggestActions: []SnapshotSuggestAction{{
			Fact:        SnapshotFact{Left: "enemy", Verb: "is", Right: "dangerous"},
			TrueAction:  "flee",
			FalseAction: "fight",
		}},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			src := openTestKB(t)
			populate(t, src)

			snap, err := src.Snapshot(ctx)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, snap.Encode(&buf, format))

			decoded, err := DecodeSnapshot(&buf, format)
			require.NoError(t, err)

			dst := openTestKB(t)
			// Pre-existing rows are merged, not duplicated
			assertFact(t, dst, "player", "can", "die", false)
			require.NoError(t, dst.Load(ctx, decoded))
			require.NoError(t, dst.Load(ctx, decoded), "loading twice is idempotent")

			got, err := dst.Snapshot(ctx)
			require.NoError(t, err)

			if diff := cmp.Diff(snap.Facts, got.Facts); diff != "" {
				t.Errorf("facts mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, snap.Rules, got.Rules)
			assert.Equal(t, snap.SuggestActions, got.SuggestActions)
			assert.ElementsMatch(t, snap.Entities, got.Entities)

			srcStats, err := src.Stats(ctx)
			require.NoError(t, err)
			dstStats, err := dst.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, srcStats, dstStats)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	ctx := context.Background()
	kb := openTestKB(t)

	assert.True(t, errors.Is(kb.Load(ctx, nil), errors.ErrInvalidRequest))
	assert.True(t, errors.Is(kb.Load(ctx, &Snapshot{Version: 99}), errors.ErrInvalidRequest))

	t.Run("bad rule rolls back the whole load", func(t *testing.T) {
		snap := &Snapshot{
			Version: SnapshotVersion,
			Facts:   []SnapshotFact{{Left: "a", Verb: "is", Right: "b", IsTrue: true}},
			Rules: []SnapshotRule{{
				Fact:   SnapshotFact{Left: "a", Verb: "is", Right: "b"},
				Reason: SnapshotFact{Left: "a", Verb: "is", Right: "b"},
			}},
		}
		require.Error(t, kb.Load(ctx, snap))

		stats, err := kb.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Facts)
	})
}

func TestDecodeSnapshot_YAML(t *testing.T) {
	src := `
version: 1
facts:
  - left: chris
    verb: is
    right: happy
    is_true: true
`
	snap, err := DecodeSnapshot(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)
	require.Len(t, snap.Facts, 1)
	assert.Equal(t, SnapshotFact{Left: "chris", Verb: "is", Right: "happy", IsTrue: true}, snap.Facts[0])

	_, err = DecodeSnapshot(strings.NewReader(src), "xml")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("dump.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("dump.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("dump"))
}
