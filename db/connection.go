package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/logger"
)

// SQLiteBusyTimeoutMS is how long a statement waits on a locked database
const SQLiteBusyTimeoutMS = 5000

// Querier is the subset of *sql.DB and *sql.Tx the model layer needs.
// Passing a *sql.Tx scopes every model operation to that transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IsMemoryPath reports whether path names an in-memory database
func IsMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// Exists reports whether a database file is already present at path.
// In-memory databases never exist beforehand.
func Exists(path string) bool {
	if IsMemoryPath(path) {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// dsn appends connection parameters that must hold on every connection the
// driver opens. Foreign keys are a per-connection setting in SQLite.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_foreign_keys=1&_busy_timeout=%d", path, sep, SQLiteBusyTimeoutMS)
}

// Open opens a SQLite database at the specified path.
// The pool is capped at one connection: the knowledge base is single-writer
// and in-memory databases only live as long as their connection.
// A nil log operates silently.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	log = logger.OrNop(log)
	log.Debugw("Opening database", logger.FieldPath, path)

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}

	// WAL is meaningless for in-memory databases; SQLite reports "memory" and carries on
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	// The DSN already asks for this; setting it again fails loudly if the driver ignored it
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	var foreignKeys int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to verify foreign keys")
	}
	if foreignKeys != 1 {
		db.Close()
		return nil, errors.New("foreign key enforcement is not available")
	}

	log.Debugw("Database opened", logger.FieldPath, path, "memory", IsMemoryPath(path))
	return db, nil
}
