package kb

import (
	"context"

	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/models"
)

// CheckRule propagates truth from fact to the consequents of every rule that
// names fact as its reason. Each reason is re-read from the store and, when
// true, its consequent is set true and persisted. Propagation stops after
// this one hop: promoted consequents do not trigger their own rules.
// Returns how many consequents changed from false to true.
func (kb *KnowledgeBase) CheckRule(ctx context.Context, fact models.Fact) (int, error) {
	if fact.ID == 0 {
		return 0, nil
	}

	rules, err := models.SelectRulesByReason(ctx, kb.q, fact.ID)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, rule := range rules {
		reason := models.Fact{ID: rule.Reason.ID}
		if err := kb.GetFact(ctx, &reason); err != nil {
			return promoted, err
		}
		if !reason.IsTrue {
			continue
		}

		consequent := models.Fact{ID: rule.Fact.ID}
		if err := kb.GetFact(ctx, &consequent); err != nil {
			return promoted, err
		}
		if consequent.IsTrue {
			continue
		}

		consequent.IsTrue = true
		if err := kb.UpdateIsTrue(ctx, &consequent); err != nil {
			return promoted, err
		}
		promoted++

		kb.logger.Debugw("Rule fired",
			logger.FieldRuleID, rule.ID,
			"reason", reason.String(),
			"fact", consequent.String(),
		)
	}
	return promoted, nil
}

// UpdateIsTrue persists fact.IsTrue. Truth is never demoted.
func (kb *KnowledgeBase) UpdateIsTrue(ctx context.Context, fact *models.Fact) error {
	return fact.UpdateIsTrue(ctx, kb.q)
}
