package models

import (
	"context"
	"database/sql"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
)

// SuggestActionTable creates the suggest_action table
const SuggestActionTable = `CREATE TABLE "suggest_action" (
	"id"           INTEGER NOT NULL UNIQUE,
	"fact"         INTEGER NOT NULL,
	"true_action"  INTEGER NOT NULL,
	"false_action" INTEGER NOT NULL,
	PRIMARY KEY("id" AUTOINCREMENT),
	UNIQUE("fact", "true_action", "false_action"),
	FOREIGN KEY("fact") REFERENCES "fact"("id") ON DELETE RESTRICT,
	FOREIGN KEY("true_action") REFERENCES "action"("id") ON DELETE RESTRICT,
	FOREIGN KEY("false_action") REFERENCES "action"("id") ON DELETE RESTRICT
)`

// SuggestAction picks TrueAction or FalseAction depending on Fact
type SuggestAction struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Fact        Fact   `json:"fact" yaml:"fact"`
	TrueAction  Action `json:"true_action" yaml:"true_action"`
	FalseAction Action `json:"false_action" yaml:"false_action"`
}

func (s *SuggestAction) checkResolved() error {
	if s.Fact.ID == 0 || s.TrueAction.ID == 0 || s.FalseAction.ID == 0 {
		return errors.Newf("suggested action for %s has unresolved parts", s.Fact)
	}
	return nil
}

// Insert adds the suggested action and sets its ID
func (s *SuggestAction) Insert(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if err := s.checkResolved(); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO suggest_action (fact, true_action, false_action) VALUES (?, ?, ?)`,
		s.Fact.ID, s.TrueAction.ID, s.FalseAction.ID)
	if err != nil {
		return db.Classify("insert suggest_action", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return db.Classify("insert suggest_action", err)
	}
	s.ID = id
	return nil
}

// Upsert inserts the suggested action or finds the existing row
func (s *SuggestAction) Upsert(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if err := s.checkResolved(); err != nil {
		return err
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO suggest_action (fact, true_action, false_action) VALUES (?, ?, ?)
		ON CONFLICT(fact, true_action, false_action) DO UPDATE SET fact = excluded.fact
		RETURNING id`,
		s.Fact.ID, s.TrueAction.ID, s.FalseAction.ID).Scan(&s.ID)
	if err != nil {
		return db.Classify("upsert suggest_action", err)
	}
	return nil
}

// Select looks the suggested action up by its ids. ID is left at 0 when there is no such row.
func (s *SuggestAction) Select(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	err := q.QueryRowContext(ctx,
		`SELECT id FROM suggest_action WHERE fact = ? AND true_action = ? AND false_action = ?`,
		s.Fact.ID, s.TrueAction.ID, s.FalseAction.ID).Scan(&s.ID)
	if errors.Is(err, sql.ErrNoRows) {
		s.ID = 0
		return nil
	}
	return db.Classify("select suggest_action", err)
}

// SelectActionByFact returns the action suggested by the fact's current truth:
// the true action when the fact is true, otherwise the false action.
// Returns "" when nothing is suggested for the fact.
func SelectActionByFact(ctx context.Context, q db.Querier, factID int64) (string, error) {
	if err := checkQuerier(q); err != nil {
		return "", err
	}
	var name string
	err := q.QueryRowContext(ctx, `
		SELECT CASE f.is_true WHEN 0 THEN fa.name ELSE ta.name END
		FROM suggest_action sa
		JOIN fact f ON f.id = sa.fact
		JOIN action ta ON ta.id = sa.true_action
		JOIN action fa ON fa.id = sa.false_action
		WHERE sa.fact = ?
		ORDER BY sa.id
		LIMIT 1`, factID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", db.Classify("select suggest_action", err)
	}
	return name, nil
}

// SelectSuggestActions returns every suggested action with action names, in
// insertion order. Only the fact id is filled in.
func SelectSuggestActions(ctx context.Context, q db.Querier) ([]SuggestAction, error) {
	if err := checkQuerier(q); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT sa.id, sa.fact, ta.id, ta.name, fa.id, fa.name
		FROM suggest_action sa
		JOIN action ta ON ta.id = sa.true_action
		JOIN action fa ON fa.id = sa.false_action
		ORDER BY sa.id`)
	if err != nil {
		return nil, db.Classify("list suggest_action", err)
	}
	defer rows.Close()

	var out []SuggestAction
	for rows.Next() {
		var s SuggestAction
		if err := rows.Scan(&s.ID, &s.Fact.ID, &s.TrueAction.ID, &s.TrueAction.Name, &s.FalseAction.ID, &s.FalseAction.Name); err != nil {
			return nil, db.Classify("scan suggest_action", err)
		}
		out = append(out, s)
	}
	return out, db.Classify("list suggest_action", rows.Err())
}
