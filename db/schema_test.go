package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testTables = []Table{
	{Name: "parent", DDL: `CREATE TABLE "parent" ("id" INTEGER PRIMARY KEY AUTOINCREMENT)`},
	{Name: "child", DDL: `CREATE TABLE "child" (
		"id"     INTEGER PRIMARY KEY AUTOINCREMENT,
		"parent" INTEGER NOT NULL,
		FOREIGN KEY("parent") REFERENCES "parent"("id") ON DELETE RESTRICT
	)`},
}

func tableCount(t *testing.T, ctx context.Context, q Querier) int {
	t.Helper()
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('parent', 'child')").Scan(&n)
	require.NoError(t, err)
	return n
}

func TestApplySchema(t *testing.T) {
	ctx := context.Background()

	t.Run("creates tables in order", func(t *testing.T) {
		conn, err := Open(":memory:", nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, ApplySchema(ctx, conn, testTables, zaptest.NewLogger(t).Sugar()))
		assert.Equal(t, 2, tableCount(t, ctx, conn))
	})

	t.Run("is idempotent", func(t *testing.T) {
		conn, err := Open(":memory:", nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, ApplySchema(ctx, conn, testTables, nil))
		require.NoError(t, ApplySchema(ctx, conn, testTables, nil), "re-applying should skip existing tables")
		assert.Equal(t, 2, tableCount(t, ctx, conn))
	})

	t.Run("bad DDL rolls back everything", func(t *testing.T) {
		conn, err := Open(":memory:", nil)
		require.NoError(t, err)
		defer conn.Close()

		broken := append([]Table{}, testTables...)
		broken = append(broken, Table{Name: "broken", DDL: "CREATE TABLE broken ("})

		err = ApplySchema(ctx, conn, broken, nil)
		require.Error(t, err)
		assert.Contains(t, fmt.Sprintf("%+v", err), "create broken")
		assert.Equal(t, 0, tableCount(t, ctx, conn))
	})

	t.Run("nil database", func(t *testing.T) {
		assert.ErrorIs(t, ApplySchema(ctx, nil, testTables, nil), ErrDatabaseClosed)
	})
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, IsAlreadyExists(fmt.Errorf(`table "entity" already exists`)))
	assert.False(t, IsAlreadyExists(fmt.Errorf("syntax error")))
	assert.False(t, IsAlreadyExists(nil))
}
