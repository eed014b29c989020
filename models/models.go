// Package models holds the rows of the knowledge base and the SQL that
// reads and writes them. Every operation takes a db.Querier so callers can
// run it against the database or inside a transaction.
package models

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
)

// Natural keys as SQLite names them in "UNIQUE constraint failed" messages
const (
	EntityKey        = "entity.name"
	VerbKey          = "verb.name"
	ActionKey        = "action.name"
	FactKey          = "fact.left_entity, fact.right_entity, fact.verb"
	RuleKey          = "rule.fact, rule.reason"
	SuggestActionKey = "suggest_action.fact, suggest_action.true_action, suggest_action.false_action"
)

// Tables returns every table in the order its foreign keys require
func Tables() []db.Table {
	return []db.Table{
		{Name: "action", DDL: ActionTable},
		{Name: "entity", DDL: EntityTable},
		{Name: "verb", DDL: VerbTable},
		{Name: "fact", DDL: FactTable},
		{Name: "rule", DDL: RuleTable},
		{Name: "suggest_action", DDL: SuggestActionTable},
	}
}

func checkQuerier(q db.Querier) error {
	if q == nil {
		return db.ErrDatabaseClosed
	}
	return nil
}

// nameTable implements the id/name tables shared by entities, verbs and actions
type nameTable string

func nameTableDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE "%s" (
	"id"   INTEGER NOT NULL UNIQUE,
	"name" TEXT NOT NULL CHECK(trim(name) != '') UNIQUE,
	PRIMARY KEY("id" AUTOINCREMENT)
)`, table)
}

func (t nameTable) insert(ctx context.Context, q db.Querier, name string) (int64, error) {
	if err := checkQuerier(q); err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, fmt.Sprintf(`INSERT INTO "%s" (name) VALUES (?)`, t), name)
	if err != nil {
		return 0, db.Classify("insert "+string(t), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, db.Classify("insert "+string(t), err)
	}
	return id, nil
}

func (t nameTable) upsert(ctx context.Context, q db.Querier, name string) (int64, error) {
	if err := checkQuerier(q); err != nil {
		return 0, err
	}
	var id int64
	err := q.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO "%s" (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name
		RETURNING id`, t), name).Scan(&id)
	if err != nil {
		return 0, db.Classify("upsert "+string(t), err)
	}
	return id, nil
}

// selectID returns 0 when no row has the name
func (t nameTable) selectID(ctx context.Context, q db.Querier, name string) (int64, error) {
	if err := checkQuerier(q); err != nil {
		return 0, err
	}
	var id int64
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM "%s" WHERE name = ?`, t), name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, db.Classify("select "+string(t), err)
	}
	return id, nil
}

// selectName returns "" when no row has the id
func (t nameTable) selectName(ctx context.Context, q db.Querier, id int64) (string, error) {
	if err := checkQuerier(q); err != nil {
		return "", err
	}
	var name string
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT name FROM "%s" WHERE id = ?`, t), id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", db.Classify("select "+string(t), err)
	}
	return name, nil
}

type namedRow struct {
	id   int64
	name string
}

func (t nameTable) all(ctx context.Context, q db.Querier) ([]namedRow, error) {
	if err := checkQuerier(q); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT id, name FROM "%s" ORDER BY id`, t))
	if err != nil {
		return nil, db.Classify("list "+string(t), err)
	}
	defer rows.Close()

	var out []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.id, &r.name); err != nil {
			return nil, db.Classify("scan "+string(t), err)
		}
		out = append(out, r)
	}
	return out, db.Classify("list "+string(t), rows.Err())
}

// Count returns the number of rows in table. table must be one of Tables().
func Count(ctx context.Context, q db.Querier, table string) (int64, error) {
	if err := checkQuerier(q); err != nil {
		return 0, err
	}
	known := false
	for _, t := range Tables() {
		if t.Name == table {
			known = true
			break
		}
	}
	if !known {
		return 0, errors.Newf("unknown table %q", table)
	}

	var n int64
	if err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&n); err != nil {
		return 0, db.Classify("count "+table, err)
	}
	return n, nil
}
