package db

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/sym"
)

// Table pairs a table name with the DDL that creates it
type Table struct {
	Name string
	DDL  string
}

// IsAlreadyExists reports whether err is SQLite refusing to create a table
// that is already there
func IsAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// ApplySchema creates tables in the given order inside one transaction.
// Order matters: a table must come after every table its foreign keys name.
// "already exists" is not an error; anything else rolls the whole schema back.
// If logger is provided, logs progress; otherwise operates silently.
func ApplySchema(ctx context.Context, db *sql.DB, tables []Table, logger *zap.SugaredLogger) error {
	if db == nil {
		return ErrDatabaseClosed
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(Classify("begin schema", err), "begin tx for schema")
	}

	created := 0
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table.DDL); err != nil {
			if IsAlreadyExists(err) {
				if logger != nil {
					logger.Debugw("Skipping table (already exists)", "table", table.Name)
				}
				continue
			}
			tx.Rollback()
			return errors.Wrapf(Classify("create table "+table.Name, err), "create %s", table.Name)
		}
		created++
		if logger != nil {
			logger.Debugw("Created table", "table", table.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(Classify("commit schema", err), "commit schema")
	}

	if logger != nil {
		logger.Infow("Schema ready",
			"symbol", sym.DB,
			"tables", len(tables),
			"created", created,
		)
	}
	return nil
}
