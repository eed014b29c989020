package models

import (
	"context"
	"strings"

	"github.com/teranos/obelisk/db"
)

// ActionTable creates the action table
var ActionTable = nameTableDDL("action")

var actionsTable = nameTable("action")

// Action is something to do depending on a fact's truth
type Action struct {
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// NewAction creates an unresolved action
func NewAction(name string) Action {
	return Action{Name: strings.TrimSpace(name)}
}

// Insert adds the action and sets its ID
func (a *Action) Insert(ctx context.Context, q db.Querier) error {
	id, err := actionsTable.insert(ctx, q, a.Name)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// Upsert inserts the action or finds the existing row, in one statement
func (a *Action) Upsert(ctx context.Context, q db.Querier) error {
	id, err := actionsTable.upsert(ctx, q, a.Name)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// Select looks the action up by name. ID is left at 0 when there is no such row.
func (a *Action) Select(ctx context.Context, q db.Querier) error {
	id, err := actionsTable.selectID(ctx, q, a.Name)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// SelectByID fills in the name for ID. Name is left empty when there is no such row.
func (a *Action) SelectByID(ctx context.Context, q db.Querier) error {
	name, err := actionsTable.selectName(ctx, q, a.ID)
	if err != nil {
		return err
	}
	a.Name = name
	return nil
}

// SelectActions returns every action in insertion order
func SelectActions(ctx context.Context, q db.Querier) ([]Action, error) {
	rows, err := actionsTable.all(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]Action, 0, len(rows))
	for _, r := range rows {
		out = append(out, Action{ID: r.id, Name: r.name})
	}
	return out, nil
}
