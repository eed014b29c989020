package models

import (
	"context"
	"database/sql"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
)

// RuleTable creates the rule table. A fact can never be its own reason.
const RuleTable = `CREATE TABLE "rule" (
	"id"     INTEGER NOT NULL UNIQUE,
	"fact"   INTEGER NOT NULL,
	"reason" INTEGER NOT NULL CHECK("reason" != "fact"),
	PRIMARY KEY("id" AUTOINCREMENT),
	UNIQUE("fact", "reason"),
	FOREIGN KEY("fact") REFERENCES "fact"("id") ON DELETE RESTRICT,
	FOREIGN KEY("reason") REFERENCES "fact"("id") ON DELETE RESTRICT
)`

// Rule makes Fact true whenever Reason is true
type Rule struct {
	ID     int64 `json:"id,omitempty" yaml:"id,omitempty"`
	Fact   Fact  `json:"fact" yaml:"fact"`
	Reason Fact  `json:"reason" yaml:"reason"`
}

func (r *Rule) checkResolved() error {
	if r.Fact.ID == 0 || r.Reason.ID == 0 {
		return errors.Newf("rule %s if %s has unresolved facts", r.Fact, r.Reason)
	}
	return nil
}

// Insert adds the rule and sets its ID. Both facts must be resolved.
func (r *Rule) Insert(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if err := r.checkResolved(); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `INSERT INTO rule (fact, reason) VALUES (?, ?)`, r.Fact.ID, r.Reason.ID)
	if err != nil {
		return db.Classify("insert rule", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return db.Classify("insert rule", err)
	}
	r.ID = id
	return nil
}

// Upsert inserts the rule or finds the existing row.
// A rule whose reason is its own fact still fails the CHECK constraint.
func (r *Rule) Upsert(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if err := r.checkResolved(); err != nil {
		return err
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO rule (fact, reason) VALUES (?, ?)
		ON CONFLICT(fact, reason) DO UPDATE SET fact = excluded.fact
		RETURNING id`, r.Fact.ID, r.Reason.ID).Scan(&r.ID)
	if err != nil {
		return db.Classify("upsert rule", err)
	}
	return nil
}

// Select looks the rule up by its fact ids. ID is left at 0 when there is no such row.
func (r *Rule) Select(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	err := q.QueryRowContext(ctx, `SELECT id FROM rule WHERE fact = ? AND reason = ?`,
		r.Fact.ID, r.Reason.ID).Scan(&r.ID)
	if errors.Is(err, sql.ErrNoRows) {
		r.ID = 0
		return nil
	}
	return db.Classify("select rule", err)
}

// SelectRulesByReason returns the rules whose reason is the given fact.
// Only ids are filled in.
func SelectRulesByReason(ctx context.Context, q db.Querier, reasonID int64) ([]Rule, error) {
	return selectRules(ctx, q, `SELECT id, fact, reason FROM rule WHERE reason = ? ORDER BY id`, reasonID)
}

// SelectRules returns every rule in insertion order. Only ids are filled in.
func SelectRules(ctx context.Context, q db.Querier) ([]Rule, error) {
	return selectRules(ctx, q, `SELECT id, fact, reason FROM rule ORDER BY id`)
}

func selectRules(ctx context.Context, q db.Querier, query string, args ...any) ([]Rule, error) {
	if err := checkQuerier(q); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Classify("select rule", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.ID, &r.Fact.ID, &r.Reason.ID); err != nil {
			return nil, db.Classify("scan rule", err)
		}
		rules = append(rules, r)
	}
	return rules, db.Classify("select rule", rows.Err())
}
