// Package kb is the knowledge base: a SQLite store of entities, verbs,
// actions, facts, rules and suggested actions.
//
// Names resolve to ids through get-or-create, and asserting a fact
// propagates its truth one hop through the rules that name it as reason.
// The knowledge base expects a single writer.
package kb

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/models"
	"github.com/teranos/obelisk/sym"
)

// DefaultPath is the knowledge base file used when none is configured
const DefaultPath = "obelisk.kb"

// KnowledgeBase owns the store connection for the lifetime of a run
type KnowledgeBase struct {
	path   string
	conn   *sql.DB    // nil inside a transaction and after Close
	q      db.Querier // conn, or the transaction in progress
	inTx   bool
	logger *zap.SugaredLogger
}

// Open opens the knowledge base at path, creating the file and its tables if
// needed. Foreign keys are enforced on every connection. Failures are
// *SchemaError. If logger is nil, operates silently.
func Open(ctx context.Context, path string, log *zap.SugaredLogger) (*KnowledgeBase, error) {
	log = logger.AddDBSymbol(log)
	existed := db.Exists(path)

	conn, err := db.Open(path, log)
	if err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}

	// Tables that exist already are skipped, so a file created by something
	// else but never bootstrapped still ends up with a schema
	if err := db.ApplySchema(ctx, conn, models.Tables(), log); err != nil {
		conn.Close()
		return nil, &SchemaError{Path: path, Err: err}
	}

	log.Debugw("Knowledge base opened",
		"symbol", sym.DB,
		logger.FieldPath, path,
		"new", !existed,
	)

	return &KnowledgeBase{
		path:   path,
		conn:   conn,
		q:      conn,
		logger: log,
	}, nil
}

// Path returns the file the knowledge base lives in
func (kb *KnowledgeBase) Path() string {
	return kb.path
}

// Close releases the store connection. Closing twice is harmless.
// Inside a transaction Close does nothing.
func (kb *KnowledgeBase) Close() error {
	if kb.inTx || kb.conn == nil {
		return nil
	}
	err := kb.conn.Close()
	kb.conn = nil
	kb.q = nil
	if err != nil {
		return errors.Wrap(err, "failed to close knowledge base")
	}
	return nil
}

// Transaction runs fn against a knowledge base bound to one SQL transaction.
// fn's writes commit together when it returns nil and roll back otherwise.
// Only tx may be used inside fn: the store has a single connection.
// Nested calls join the outer transaction.
func (kb *KnowledgeBase) Transaction(ctx context.Context, fn func(tx *KnowledgeBase) error) error {
	if kb.inTx {
		return fn(kb)
	}
	if kb.conn == nil {
		return db.ErrDatabaseClosed
	}

	sqlTx, err := kb.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(db.Classify("begin transaction", err), "failed to begin transaction")
	}

	tx := &KnowledgeBase{
		path:   kb.path,
		q:      sqlTx,
		inTx:   true,
		logger: kb.logger,
	}

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			kb.logger.Warnw("Rollback failed", logger.FieldError, rbErr.Error())
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return errors.Wrap(db.Classify("commit transaction", err), "failed to commit transaction")
	}
	return nil
}
