package kb

import (
	"context"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

// QueryFact looks a fact up by names. Returns an ErrNotFound error when the
// knowledge base has no such fact.
func (kb *KnowledgeBase) QueryFact(ctx context.Context, left, verb, right string) (models.Fact, error) {
	fact := models.NewFact(left, verb, right)
	if err := fact.SelectByName(ctx, kb.q); err != nil {
		return models.Fact{}, err
	}
	if fact.ID == 0 {
		return models.Fact{}, errors.NewNotFoundError("fact %s", fact)
	}
	return fact, nil
}

// QuerySuggestAction returns the action suggested for fact given its current
// truth. A fact without an ID is looked up by names first.
func (kb *KnowledgeBase) QuerySuggestAction(ctx context.Context, fact models.Fact) (string, error) {
	if fact.ID == 0 {
		found, err := kb.QueryFact(ctx, fact.Left.Name, fact.Verb.Name, fact.Right.Name)
		if err != nil {
			return "", err
		}
		fact = found
	}

	action, err := models.SelectActionByFact(ctx, kb.q, fact.ID)
	if err != nil {
		return "", err
	}
	if action == "" {
		return "", errors.NewNotFoundError("no action suggested for %s", fact)
	}
	return action, nil
}

// Stats counts the rows of each table
type Stats struct {
	Entities       int64 `json:"entities" yaml:"entities"`
	Verbs          int64 `json:"verbs" yaml:"verbs"`
	Actions        int64 `json:"actions" yaml:"actions"`
	Facts          int64 `json:"facts" yaml:"facts"`
	TrueFacts      int64 `json:"true_facts" yaml:"true_facts"`
	Rules          int64 `json:"rules" yaml:"rules"`
	SuggestActions int64 `json:"suggest_actions" yaml:"suggest_actions"`
}

// Stats returns row counts for the whole knowledge base
func (kb *KnowledgeBase) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	counts := []struct {
		table string
		dst   *int64
	}{
		{"entity", &s.Entities},
		{"verb", &s.Verbs},
		{"action", &s.Actions},
		{"fact", &s.Facts},
		{"rule", &s.Rules},
		{"suggest_action", &s.SuggestActions},
	}
	for _, c := range counts {
		n, err := models.Count(ctx, kb.q, c.table)
		if err != nil {
			return Stats{}, err
		}
		*c.dst = n
	}

	trueFacts, err := models.CountTrueFacts(ctx, kb.q)
	if err != nil {
		return Stats{}, err
	}
	s.TrueFacts = trueFacts
	return s, nil
}
