package models

import (
	"context"
	"strings"

	"github.com/teranos/obelisk/db"
)

// EntityTable creates the entity table
var EntityTable = nameTableDDL("entity")

var entitiesTable = nameTable("entity")

// Entity is a named subject or object a fact talks about
type Entity struct {
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// NewEntity creates an unresolved entity
func NewEntity(name string) Entity {
	return Entity{Name: strings.TrimSpace(name)}
}

// Insert adds the entity and sets its ID
func (e *Entity) Insert(ctx context.Context, q db.Querier) error {
	id, err := entitiesTable.insert(ctx, q, e.Name)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Upsert inserts the entity or finds the existing row, in one statement
func (e *Entity) Upsert(ctx context.Context, q db.Querier) error {
	id, err := entitiesTable.upsert(ctx, q, e.Name)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Select looks the entity up by name. ID is left at 0 when there is no such row.
func (e *Entity) Select(ctx context.Context, q db.Querier) error {
	id, err := entitiesTable.selectID(ctx, q, e.Name)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// SelectByID fills in the name for ID. Name is left empty when there is no such row.
func (e *Entity) SelectByID(ctx context.Context, q db.Querier) error {
	name, err := entitiesTable.selectName(ctx, q, e.ID)
	if err != nil {
		return err
	}
	e.Name = name
	return nil
}

// SelectEntities returns every entity in insertion order
func SelectEntities(ctx context.Context, q db.Querier) ([]Entity, error) {
	rows, err := entitiesTable.all(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entity{ID: r.id, Name: r.name})
	}
	return out, nil
}
