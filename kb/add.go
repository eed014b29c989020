package kb

import (
	"context"

	"github.com/teranos/obelisk/db"
	"github.com/teranos/obelisk/models"
)

// The Add* batch operations insert each element in place. A unique violation
// on the element's own natural key means it is already stored: it is skipped
// and its ID stays 0, for the caller to fetch with the matching Get*. Any
// other error stops the batch and is returned.

// swallowDuplicate drops a unique violation on key and passes anything else through
func swallowDuplicate(err error, key string) error {
	if db.IsUniqueViolationOn(err, key) {
		return nil
	}
	return err
}

// AddEntities inserts entities
func (kb *KnowledgeBase) AddEntities(ctx context.Context, entities []models.Entity) error {
	for i := range entities {
		if err := swallowDuplicate(entities[i].Insert(ctx, kb.q), models.EntityKey); err != nil {
			return err
		}
	}
	return nil
}

// AddVerbs inserts verbs
func (kb *KnowledgeBase) AddVerbs(ctx context.Context, verbs []models.Verb) error {
	for i := range verbs {
		if err := swallowDuplicate(verbs[i].Insert(ctx, kb.q), models.VerbKey); err != nil {
			return err
		}
	}
	return nil
}

// AddActions inserts actions
func (kb *KnowledgeBase) AddActions(ctx context.Context, actions []models.Action) error {
	for i := range actions {
		if err := swallowDuplicate(actions[i].Insert(ctx, kb.q), models.ActionKey); err != nil {
			return err
		}
	}
	return nil
}

// AddFacts inserts facts whose entities and verb are resolved
func (kb *KnowledgeBase) AddFacts(ctx context.Context, facts []models.Fact) error {
	for i := range facts {
		if err := swallowDuplicate(facts[i].Insert(ctx, kb.q), models.FactKey); err != nil {
			return err
		}
	}
	return nil
}

// AddRules inserts rules whose facts are resolved
func (kb *KnowledgeBase) AddRules(ctx context.Context, rules []models.Rule) error {
	for i := range rules {
		if err := swallowDuplicate(rules[i].Insert(ctx, kb.q), models.RuleKey); err != nil {
			return err
		}
	}
	return nil
}

// AddSuggestActions inserts suggested actions whose fact and actions are resolved
func (kb *KnowledgeBase) AddSuggestActions(ctx context.Context, suggestActions []models.SuggestAction) error {
	for i := range suggestActions {
		if err := swallowDuplicate(suggestActions[i].Insert(ctx, kb.q), models.SuggestActionKey); err != nil {
			return err
		}
	}
	return nil
}

// GetEntity fills in entity.ID by name, leaving it 0 when absent
func (kb *KnowledgeBase) GetEntity(ctx context.Context, entity *models.Entity) error {
	return entity.Select(ctx, kb.q)
}

// GetVerb fills in verb.ID by name, leaving it 0 when absent
func (kb *KnowledgeBase) GetVerb(ctx context.Context, verb *models.Verb) error {
	return verb.Select(ctx, kb.q)
}

// GetAction fills in action.ID by name, leaving it 0 when absent
func (kb *KnowledgeBase) GetAction(ctx context.Context, action *models.Action) error {
	return action.Select(ctx, kb.q)
}

// GetFact loads a fact by ID when it has one, otherwise by its entity and
// verb ids. ID ends up 0 when absent.
func (kb *KnowledgeBase) GetFact(ctx context.Context, fact *models.Fact) error {
	if fact.ID != 0 {
		return fact.SelectByID(ctx, kb.q)
	}
	return fact.Select(ctx, kb.q)
}

// GetRule fills in rule.ID from its fact ids
func (kb *KnowledgeBase) GetRule(ctx context.Context, rule *models.Rule) error {
	return rule.Select(ctx, kb.q)
}

// GetSuggestAction fills in suggestAction.ID from its fact and action ids
func (kb *KnowledgeBase) GetSuggestAction(ctx context.Context, suggestAction *models.SuggestAction) error {
	return suggestAction.Select(ctx, kb.q)
}
