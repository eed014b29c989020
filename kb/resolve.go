package kb

import (
	"context"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

// resolve is the get-or-create primitive. upsert inserts or returns the
// existing id in one statement; if that still leaves no id the row is looked
// up by natural key, and only then is resolution given up.
func (kb *KnowledgeBase) resolve(ctx context.Context, kind, label, key string,
	upsert, lookup func(context.Context, db.Querier) error, id func() int64) error {

	if err := upsert(ctx, kb.q); err != nil && !db.IsUniqueViolationOn(err, key) {
		return err
	}
	if id() == 0 {
		if err := lookup(ctx, kb.q); err != nil {
			return err
		}
	}
	if id() == 0 {
		return errors.NewUnresolvedError("%s %s", kind, label)
	}

	kb.logger.Debugw("Resolved", "kind", kind, "name", label, "id", id())
	return nil
}

// ResolveEntity gets or creates the entity and sets its ID
func (kb *KnowledgeBase) ResolveEntity(ctx context.Context, entity *models.Entity) error {
	return kb.resolve(ctx, "entity", entity.Name, models.EntityKey,
		entity.Upsert, entity.Select, func() int64 { return entity.ID })
}

// ResolveVerb gets or creates the verb and sets its ID
func (kb *KnowledgeBase) ResolveVerb(ctx context.Context, verb *models.Verb) error {
	return kb.resolve(ctx, "verb", verb.Name, models.VerbKey,
		verb.Upsert, verb.Select, func() int64 { return verb.ID })
}

// ResolveAction gets or creates the action and sets its ID
func (kb *KnowledgeBase) ResolveAction(ctx context.Context, action *models.Action) error {
	return kb.resolve(ctx, "action", action.Name, models.ActionKey,
		action.Upsert, action.Select, func() int64 { return action.ID })
}

// ResolveFact gets or creates a fact whose parts are already resolved.
// A stored fact is promoted when fact.IsTrue is set; fact.IsTrue is then
// refreshed from the store.
func (kb *KnowledgeBase) ResolveFact(ctx context.Context, fact *models.Fact) error {
	return kb.resolve(ctx, "fact", fact.String(), models.FactKey,
		fact.Upsert, fact.Select, func() int64 { return fact.ID })
}

// ResolveFactParts resolves the entities and verb of a fact
func (kb *KnowledgeBase) ResolveFactParts(ctx context.Context, fact *models.Fact) error {
	if err := kb.ResolveEntity(ctx, &fact.Left); err != nil {
		return err
	}
	if err := kb.ResolveEntity(ctx, &fact.Right); err != nil {
		return err
	}
	return kb.ResolveVerb(ctx, &fact.Verb)
}

// ResolveRule gets or creates a rule whose facts are resolved.
// A rule whose reason is its own fact fails with a constraint error.
func (kb *KnowledgeBase) ResolveRule(ctx context.Context, rule *models.Rule) error {
	return kb.resolve(ctx, "rule", rule.Fact.String()+" if "+rule.Reason.String(), models.RuleKey,
		rule.Upsert, rule.Select, func() int64 { return rule.ID })
}

// ResolveSuggestAction gets or creates a suggested action whose parts are resolved
func (kb *KnowledgeBase) ResolveSuggestAction(ctx context.Context, suggestAction *models.SuggestAction) error {
	return kb.resolve(ctx, "suggested action", suggestAction.Fact.String(), models.SuggestActionKey,
		suggestAction.Upsert, suggestAction.Select, func() int64 { return suggestAction.ID })
}
