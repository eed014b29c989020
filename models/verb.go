package models

import (
	"context"
	"strings"

	"github.com/teranos/obelisk/db"
)

// VerbTable creates the verb table
var VerbTable = nameTableDDL("verb")

var verbsTable = nameTable("verb")

// Verb is the relation a fact asserts between two entities
type Verb struct {
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// NewVerb creates an unresolved verb
func NewVerb(name string) Verb {
	return Verb{Name: strings.TrimSpace(name)}
}

// Insert adds the verb and sets its ID
func (v *Verb) Insert(ctx context.Context, q db.Querier) error {
	id, err := verbsTable.insert(ctx, q, v.Name)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

// Upsert inserts the verb or finds the existing row, in one statement
func (v *Verb) Upsert(ctx context.Context, q db.Querier) error {
	id, err := verbsTable.upsert(ctx, q, v.Name)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

// Select looks the verb up by name. ID is left at 0 when there is no such row.
func (v *Verb) Select(ctx context.Context, q db.Querier) error {
	id, err := verbsTable.selectID(ctx, q, v.Name)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

// SelectByID fills in the name for ID. Name is left empty when there is no such row.
func (v *Verb) SelectByID(ctx context.Context, q db.Querier) error {
	name, err := verbsTable.selectName(ctx, q, v.ID)
	if err != nil {
		return err
	}
	v.Name = name
	return nil
}

// SelectVerbs returns every verb in insertion order
func SelectVerbs(ctx context.Context, q db.Querier) ([]Verb, error) {
	rows, err := verbsTable.all(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]Verb, 0, len(rows))
	for _, r := range rows {
		out = append(out, Verb{ID: r.id, Name: r.name})
	}
	return out, nil
}
