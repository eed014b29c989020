package kb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestKB(t *testing.T) *KnowledgeBase {
	t.Helper()
	kb, err := Open(context.Background(), ":memory:", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { kb.Close() })
	return kb
}

// assertFact resolves a fact and its parts outside of any statement
func assertFact(t *testing.T, kb *KnowledgeBase, left, verb, right string, isTrue bool) models.Fact {
	t.Helper()
	ctx := context.Background()
	f := models.NewFact(left, verb, right)
	require.NoError(t, kb.ResolveFactParts(ctx, &f))
	f.IsTrue = isTrue
	require.NoError(t, kb.ResolveFact(ctx, &f))
	return f
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("creates schema in a new file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.kb")

		kb, err := Open(ctx, path, nil)
		require.NoError(t, err)
		assert.Equal(t, path, kb.Path())

		stats, err := kb.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, Stats{}, stats)
		require.NoError(t, kb.Close())

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("reopening keeps data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keep.kb")

		kb, err := Open(ctx, path, nil)
		require.NoError(t, err)
		assertFact(t, kb, "chris", "is", "here", true)
		require.NoError(t, kb.Close())

		kb, err = Open(ctx, path, nil)
		require.NoError(t, err)
		defer kb.Close()

		f, err := kb.QueryFact(ctx, "chris", "is", "here")
		require.NoError(t, err)
		assert.True(t, f.IsTrue)
	})

	t.Run("unopenable path is a schema error", func(t *testing.T) {
		_, err := Open(ctx, "/nonexistent/dir/obelisk.kb", nil)
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		assert.Contains(t, err.Error(), "/nonexistent/dir/obelisk.kb")
	})

	t.Run("foreign keys are enforced", func(t *testing.T) {
		kb := openTestKB(t)
		f := models.Fact{Left: models.Entity{ID: 77}, Right: models.Entity{ID: 78}, Verb: models.Verb{ID: 79}}
		err := kb.AddFacts(ctx, []models.Fact{f})
		require.Error(t, err)

		var storeErr *db.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, db.ConstraintForeignKey, storeErr.Constraint)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	kb, err := Open(ctx, ":memory:", nil)
	require.NoError(t, err)

	require.NoError(t, kb.Close())
	require.NoError(t, kb.Close())

	e := models.NewEntity("late")
	assert.ErrorIs(t, kb.ResolveEntity(ctx, &e), db.ErrDatabaseClosed)
	assert.ErrorIs(t, kb.Transaction(ctx, func(*KnowledgeBase) error { return nil }), db.ErrDatabaseClosed)
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		kb := openTestKB(t)
		err := kb.Transaction(ctx, func(tx *KnowledgeBase) error {
			e := models.NewEntity("kept")
			return tx.ResolveEntity(ctx, &e)
		})
		require.NoError(t, err)

		e := models.NewEntity("kept")
		require.NoError(t, kb.GetEntity(ctx, &e))
		assert.NotZero(t, e.ID)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		kb := openTestKB(t)
		boom := errors.New("boom")
		err := kb.Transaction(ctx, func(tx *KnowledgeBase) error {
			e := models.NewEntity("discarded")
			require.NoError(t, tx.ResolveEntity(ctx, &e))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		e := models.NewEntity("discarded")
		require.NoError(t, kb.GetEntity(ctx, &e))
		assert.Zero(t, e.ID)
	})

	t.Run("nested transactions join the outer one", func(t *testing.T) {
		kb := openTestKB(t)
		err := kb.Transaction(ctx, func(tx *KnowledgeBase) error {
			require.NoError(t, tx.Close(), "close inside a transaction is a no-op")
			return tx.Transaction(ctx, func(inner *KnowledgeBase) error {
				assert.Same(t, tx, inner)
				v := models.NewVerb("nested")
				return inner.ResolveVerb(ctx, &v)
			})
		})
		require.NoError(t, err)

		v := models.NewVerb("nested")
		require.NoError(t, kb.GetVerb(ctx, &v))
		assert.NotZero(t, v.ID)
	})
}
