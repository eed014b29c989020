package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/obelisk/errors"
)

func pragma(t *testing.T, q Querier, name string) string {
	t.Helper()
	var value string
	require.NoError(t, q.QueryRowContext(t.Context(), "PRAGMA "+name).Scan(&value))
	return value
}

func TestOpen_Pragmas(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		journal string
	}{
		{"file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "game.kb") }, "wal"},
		{"memory", func(t *testing.T) string { return ":memory:" }, "memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Open(tt.path(t), zaptest.NewLogger(t).Sugar())
			require.NoError(t, err)
			defer conn.Close()

			assert.Equal(t, tt.journal, pragma(t, conn, "journal_mode"))
			assert.Equal(t, "1", pragma(t, conn, "foreign_keys"))
			assert.Equal(t, "5000", pragma(t, conn, "busy_timeout"))
			assert.Equal(t, 1, conn.Stats().MaxOpenConnections)
		})
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.kb")
	require.False(t, Exists(path))

	conn, err := Open(path, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.True(t, Exists(path))
}

func TestOpen_UnreachablePath(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "game.kb"), nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	assert.NotNil(t, errors.GetStack(err))
}

func TestOpen_MemoryOutlivesStatements(t *testing.T) {
	conn, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec("CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO t VALUES (1)")
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_EnforcesForeignKeys(t *testing.T) {
	conn, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`CREATE TABLE parent (id INTEGER PRIMARY KEY);
		CREATE TABLE child (parent_id INTEGER REFERENCES parent(id))`)
	require.NoError(t, err)

	_, err = conn.Exec("INSERT INTO child VALUES (42)")
	require.Error(t, err)
	assert.True(t, IsConstraint(Classify("insert child", err)))
}

func TestIsMemoryPath(t *testing.T) {
	assert.True(t, IsMemoryPath(":memory:"))
	assert.True(t, IsMemoryPath("file::memory:?cache=shared"))
	assert.False(t, IsMemoryPath("obelisk.kb"))
	assert.False(t, Exists(":memory:"))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.kb?_foreign_keys=1&_busy_timeout=5000", dsn("a.kb"))
	assert.Equal(t, "file:a.kb?mode=rwc&_foreign_keys=1&_busy_timeout=5000", dsn("file:a.kb?mode=rwc"))
}
