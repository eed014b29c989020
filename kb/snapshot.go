package kb

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
)

// SnapshotVersion is written into every snapshot
const SnapshotVersion = 1

// Snapshot is a portable copy of a knowledge base keyed by names, so it can
// be loaded into a knowledge base whose ids differ
type Snapshot struct {
	Version        int                     `json:"version" yaml:"version"`
	Entities       []string                `json:"entities,omitempty" yaml:"entities,omitempty"`
	Verbs          []string                `json:"verbs,omitempty" yaml:"verbs,omitempty"`
	Actions        []string                `json:"actions,omitempty" yaml:"actions,omitempty"`
	Facts          []SnapshotFact          `json:"facts,omitempty" yaml:"facts,omitempty"`
	Rules          []SnapshotRule          `json:"rules,omitempty" yaml:"rules,omitempty"`
	SuggestActions []SnapshotSuggestAction `json:"suggest_actions,omitempty" yaml:"suggest_actions,omitempty"`
}

// SnapshotFact names a fact. IsTrue is only meaningful in Snapshot.Facts.
type SnapshotFact struct {
	Left   string `json:"left" yaml:"left"`
	Verb   string `json:"verb" yaml:"verb"`
	Right  string `json:"right" yaml:"right"`
	IsTrue bool   `json:"is_true,omitempty" yaml:"is_true,omitempty"`
}

// SnapshotRule names a rule by its two facts
type SnapshotRule struct {
	Fact   SnapshotFact `json:"fact" yaml:"fact"`
	Reason SnapshotFact `json:"reason" yaml:"reason"`
}

// SnapshotSuggestAction names a suggested action
type SnapshotSuggestAction struct {
	Fact        SnapshotFact `json:"fact" yaml:"fact"`
	TrueAction  string       `json:"true_action" yaml:"true_action"`
	FalseAction string       `json:"false_action" yaml:"false_action"`
}

func snapshotFact(f models.Fact) SnapshotFact {
	return SnapshotFact{Left: f.Left.Name, Verb: f.Verb.Name, Right: f.Right.Name, IsTrue: f.IsTrue}
}

func (sf SnapshotFact) fact() models.Fact {
	f := models.NewFact(sf.Left, sf.Verb, sf.Right)
	f.IsTrue = sf.IsTrue
	return f
}

// Snapshot reads the whole knowledge base
func (kb *KnowledgeBase) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Version: SnapshotVersion}

	entities, err := models.SelectEntities(ctx, kb.q)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		snap.Entities = append(snap.Entities, e.Name)
	}

	verbs, err := models.SelectVerbs(ctx, kb.q)
	if err != nil {
		return nil, err
	}
	for _, v := range verbs {
		snap.Verbs = append(snap.Verbs, v.Name)
	}

	actions, err := models.SelectActions(ctx, kb.q)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		snap.Actions = append(snap.Actions, a.Name)
	}

	facts, err := models.SelectFacts(ctx, kb.q)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Fact, len(facts))
	for _, f := range facts {
		byID[f.ID] = f
		snap.Facts = append(snap.Facts, snapshotFact(f))
	}

	rules, err := models.SelectRules(ctx, kb.q)
	if err != nil {
		return nil, err
	}
	for _, r := range rules {
		fact, reason := snapshotFact(byID[r.Fact.ID]), snapshotFact(byID[r.Reason.ID])
		fact.IsTrue, reason.IsTrue = false, false
		snap.Rules = append(snap.Rules, SnapshotRule{Fact: fact, Reason: reason})
	}

	suggestActions, err := models.SelectSuggestActions(ctx, kb.q)
	if err != nil {
		return nil, err
	}
	for _, sa := range suggestActions {
		fact := snapshotFact(byID[sa.Fact.ID])
		fact.IsTrue = false
		snap.SuggestActions = append(snap.SuggestActions, SnapshotSuggestAction{
			Fact:        fact,
			TrueAction:  sa.TrueAction.Name,
			FalseAction: sa.FalseAction.Name,
		})
	}

	return snap, nil
}

// Load merges a snapshot into the knowledge base in one transaction.
// Existing rows are kept and true facts stay true. Rules are not fired:
// the snapshot already carries each fact's truth.
func (kb *KnowledgeBase) Load(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.NewInvalidRequestError("nil snapshot")
	}
	if snap.Version != SnapshotVersion {
		return errors.NewInvalidRequestError("unsupported snapshot version %d", snap.Version)
	}

	return kb.Transaction(ctx, func(tx *KnowledgeBase) error {
		entities := make([]models.Entity, 0, len(snap.Entities))
		for _, name := range snap.Entities {
			entities = append(entities, models.NewEntity(name))
		}
		if err := tx.AddEntities(ctx, entities); err != nil {
			return errors.Wrap(err, "failed to load entities")
		}

		verbs := make([]models.Verb, 0, len(snap.Verbs))
		for _, name := range snap.Verbs {
			verbs = append(verbs, models.NewVerb(name))
		}
		if err := tx.AddVerbs(ctx, verbs); err != nil {
			return errors.Wrap(err, "failed to load verbs")
		}

		actions := make([]models.Action, 0, len(snap.Actions))
		for _, name := range snap.Actions {
			actions = append(actions, models.NewAction(name))
		}
		if err := tx.AddActions(ctx, actions); err != nil {
			return errors.Wrap(err, "failed to load actions")
		}

		for _, sf := range snap.Facts {
			f := sf.fact()
			if err := tx.resolveFact(ctx, &f); err != nil {
				return errors.Wrapf(err, "failed to load fact %s", f)
			}
		}

		for _, sr := range snap.Rules {
			rule := models.Rule{Fact: sr.Fact.fact(), Reason: sr.Reason.fact()}
			if err := tx.resolveFact(ctx, &rule.Reason); err != nil {
				return errors.Wrapf(err, "failed to load rule reason %s", rule.Reason)
			}
			if err := tx.resolveFact(ctx, &rule.Fact); err != nil {
				return errors.Wrapf(err, "failed to load rule fact %s", rule.Fact)
			}
			if err := tx.ResolveRule(ctx, &rule); err != nil {
				return errors.Wrapf(err, "failed to load rule %s if %s", rule.Fact, rule.Reason)
			}
		}

		for _, ssa := range snap.SuggestActions {
			sa := models.SuggestAction{
				Fact:        ssa.Fact.fact(),
				TrueAction:  models.NewAction(ssa.TrueAction),
				FalseAction: models.NewAction(ssa.FalseAction),
			}
			if err := tx.resolveFact(ctx, &sa.Fact); err != nil {
				return errors.Wrapf(err, "failed to load suggested action fact %s", sa.Fact)
			}
			if err := tx.ResolveAction(ctx, &sa.TrueAction); err != nil {
				return err
			}
			if err := tx.ResolveAction(ctx, &sa.FalseAction); err != nil {
				return err
			}
			if err := tx.ResolveSuggestAction(ctx, &sa); err != nil {
				return errors.Wrapf(err, "failed to load suggested action for %s", sa.Fact)
			}
		}

		tx.logger.Infow("Snapshot loaded",
			"facts", len(snap.Facts),
			"rules", len(snap.Rules),
			"suggest_actions", len(snap.SuggestActions),
		)
		return nil
	})
}

func (kb *KnowledgeBase) resolveFact(ctx context.Context, f *models.Fact) error {
	if err := kb.ResolveFactParts(ctx, f); err != nil {
		return err
	}
	return kb.ResolveFact(ctx, f)
}

// Snapshot encodings
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatForPath picks an encoding from a file extension, defaulting to YAML
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode writes the snapshot as YAML or JSON
func (s *Snapshot) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(s), "failed to encode snapshot as JSON")
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return errors.Wrap(err, "failed to encode snapshot as YAML")
		}
		return errors.Wrap(enc.Close(), "failed to encode snapshot as YAML")
	default:
		return errors.Newf("unsupported format: %s (supported: yaml, json)", format)
	}
}

// DecodeSnapshot reads a snapshot written by Encode
func DecodeSnapshot(r io.Reader, format string) (*Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON snapshot")
		}
	case FormatYAML, "":
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML snapshot")
		}
	default:
		return nil, errors.Newf("unsupported format: %s (supported: yaml, json)", format)
	}
	return &snap, nil
}
