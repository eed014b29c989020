package models

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
)

// FactTable creates the fact table. A fact is unique per (left, right, verb).
const FactTable = `CREATE TABLE "fact" (
	"id"           INTEGER NOT NULL UNIQUE,
	"left_entity"  INTEGER NOT NULL,
	"right_entity" INTEGER NOT NULL,
	"verb"         INTEGER NOT NULL,
	"is_true"      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY("id" AUTOINCREMENT),
	UNIQUE("left_entity", "right_entity", "verb"),
	FOREIGN KEY("verb") REFERENCES "verb"("id") ON DELETE RESTRICT,
	FOREIGN KEY("right_entity") REFERENCES "entity"("id") ON DELETE RESTRICT,
	FOREIGN KEY("left_entity") REFERENCES "entity"("id") ON DELETE RESTRICT
)`

// Fact states that Left relates to Right by Verb
type Fact struct {
	ID     int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Left   Entity `json:"left" yaml:"left"`
	Right  Entity `json:"right" yaml:"right"`
	Verb   Verb   `json:"verb" yaml:"verb"`
	IsTrue bool   `json:"is_true" yaml:"is_true"`
}

// NewFact creates an unresolved fact from names
func NewFact(left, verb, right string) Fact {
	return Fact{
		Left:  NewEntity(left),
		Right: NewEntity(right),
		Verb:  NewVerb(verb),
	}
}

// String renders the fact the way it is written in source
func (f Fact) String() string {
	return fmt.Sprintf("%q %s %q", f.Left.Name, f.Verb.Name, f.Right.Name)
}

func (f *Fact) checkResolved() error {
	if f.Left.ID == 0 || f.Right.ID == 0 || f.Verb.ID == 0 {
		return errors.Newf("fact %s has unresolved parts", f)
	}
	return nil
}

// Insert adds the fact and sets its ID. Its entities and verb must be resolved.
func (f *Fact) Insert(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if err := f.checkResolved(); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO fact (left_entity, right_entity, verb, is_true) VALUES (?, ?, ?, ?)`,
		f.Left.ID, f.Right.ID, f.Verb.ID, f.IsTrue)
	if err != nil {
		return db.Classify("insert fact", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return db.Classify("insert fact", err)
	}
	f.ID = id
	return nil
}

// Upsert inserts the fact or finds the existing row. An existing fact is
// promoted to true when f.IsTrue is set, never demoted. IsTrue is refreshed
// from the stored row.
func (f *Fact) Upsert(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if err := f.checkResolved(); err != nil {
		return err
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO fact (left_entity, right_entity, verb, is_true) VALUES (?, ?, ?, ?)
		ON CONFLICT(left_entity, right_entity, verb) DO UPDATE SET is_true = MAX(is_true, excluded.is_true)
		RETURNING id, is_true`,
		f.Left.ID, f.Right.ID, f.Verb.ID, f.IsTrue).Scan(&f.ID, &f.IsTrue)
	if err != nil {
		return db.Classify("upsert fact", err)
	}
	return nil
}

// Select looks the fact up by its entity and verb ids and refreshes IsTrue.
// ID is left at 0 when there is no such row.
func (f *Fact) Select(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	var id int64
	var isTrue bool
	err := q.QueryRowContext(ctx,
		`SELECT id, is_true FROM fact WHERE left_entity = ? AND right_entity = ? AND verb = ?`,
		f.Left.ID, f.Right.ID, f.Verb.ID).Scan(&id, &isTrue)
	if errors.Is(err, sql.ErrNoRows) {
		f.ID = 0
		return nil
	}
	if err != nil {
		return db.Classify("select fact", err)
	}
	f.ID, f.IsTrue = id, isTrue
	return nil
}

const selectFactColumns = `
	SELECT f.id, f.is_true, le.id, le.name, re.id, re.name, v.id, v.name
	FROM fact f
	JOIN entity le ON le.id = f.left_entity
	JOIN entity re ON re.id = f.right_entity
	JOIN verb v ON v.id = f.verb`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFact(row rowScanner, f *Fact) error {
	return row.Scan(&f.ID, &f.IsTrue,
		&f.Left.ID, &f.Left.Name,
		&f.Right.ID, &f.Right.Name,
		&f.Verb.ID, &f.Verb.Name)
}

// SelectByID loads the whole fact, names included, for f.ID.
// ID is reset to 0 when there is no such row.
func (f *Fact) SelectByID(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	err := scanFact(q.QueryRowContext(ctx, selectFactColumns+` WHERE f.id = ?`, f.ID), f)
	if errors.Is(err, sql.ErrNoRows) {
		f.ID = 0
		return nil
	}
	return db.Classify("select fact", err)
}

// SelectByName loads the fact whose entity and verb names match f.
// ID is left at 0 when there is no such row.
func (f *Fact) SelectByName(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	var found Fact
	err := scanFact(q.QueryRowContext(ctx, selectFactColumns+` WHERE le.name = ? AND v.name = ? AND re.name = ?`,
		f.Left.Name, f.Verb.Name, f.Right.Name), &found)
	if errors.Is(err, sql.ErrNoRows) {
		f.ID = 0
		return nil
	}
	if err != nil {
		return db.Classify("select fact", err)
	}
	*f = found
	return nil
}

// UpdateIsTrue persists f.IsTrue. Stored truth is never demoted, so writing
// false to a true fact leaves it true.
func (f *Fact) UpdateIsTrue(ctx context.Context, q db.Querier) error {
	if err := checkQuerier(q); err != nil {
		return err
	}
	if f.ID == 0 {
		return errors.Newf("fact %s has no id", f)
	}
	res, err := q.ExecContext(ctx, `UPDATE fact SET is_true = MAX(is_true, ?) WHERE id = ?`, f.IsTrue, f.ID)
	if err != nil {
		return db.Classify("update fact", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify("update fact", err)
	}
	if n == 0 {
		return errors.NewNotFoundError("fact %d", f.ID)
	}
	return nil
}

// SelectFacts returns every fact with names, in insertion order
func SelectFacts(ctx context.Context, q db.Querier) ([]Fact, error) {
	if err := checkQuerier(q); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, selectFactColumns+` ORDER BY f.id`)
	if err != nil {
		return nil, db.Classify("list fact", err)
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var f Fact
		if err := scanFact(rows, &f); err != nil {
			return nil, db.Classify("scan fact", err)
		}
		facts = append(facts, f)
	}
	return facts, db.Classify("list fact", rows.Err())
}

// CountTrueFacts returns how many facts are true
func CountTrueFacts(ctx context.Context, q db.Querier) (int64, error) {
	if err := checkQuerier(q); err != nil {
		return 0, err
	}
	var n int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact WHERE is_true != 0`).Scan(&n); err != nil {
		return 0, db.Classify("count fact", err)
	}
	return n, nil
}
