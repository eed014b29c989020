package parser

import (
	"context"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/kb"
	"github.com/teranos/obelisk/lexer"
	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/models"
	"github.com/teranos/obelisk/sym"
)

// StatementKind names a statement form
type StatementKind string

const (
	StatementFact   StatementKind = "fact"
	StatementRule   StatementKind = "rule"
	StatementAction StatementKind = "action"
)

// Symbol returns the glyph used for the statement kind in output
func (k StatementKind) Symbol() string {
	switch k {
	case StatementFact:
		return sym.Fact
	case StatementRule:
		return sym.Rule
	case StatementAction:
		return sym.Action
	}
	return ""
}

// Statement is what a handled statement stored
type Statement struct {
	Kind     StatementKind
	Position lexer.Position // Where the keyword was

	Facts  []models.Fact         // Asserted facts (fact statements)
	Rule   *models.Rule          // Stored rule (rule statements)
	Action *models.SuggestAction // Stored suggested action (action statements)

	Promoted int // Consequents made true by rules firing
}

// resolutionError reports that a name could not be turned into a row.
// Anything other than an unresolved name is passed through untouched.
func (p *Parser) resolutionError(err error, what string) error {
	if err == nil {
		return nil
	}
	if !errors.IsUnresolvedError(err) {
		return err
	}
	return NewParseError(ErrorKindResolution, what+" could not be inserted into the database").
		WithStatement(p.statement).
		WithSource(p.lex.Name()).
		WithRange(p.lex.Range()).
		WithUnderlying(err)
}

// resolveFact resolves the entities, verb and row of a fact. verbID, when
// non-zero, is reused instead of resolving the verb again.
func (p *Parser) resolveFact(ctx context.Context, tx *kb.KnowledgeBase, f *models.Fact, verbID int64) error {
	if err := p.resolutionError(tx.ResolveEntity(ctx, &f.Left), "left entity"); err != nil {
		return err
	}
	if err := p.resolutionError(tx.ResolveEntity(ctx, &f.Right), "right entity"); err != nil {
		return err
	}
	if verbID != 0 {
		f.Verb.ID = verbID
	} else if err := p.resolutionError(tx.ResolveVerb(ctx, &f.Verb), "verb"); err != nil {
		return err
	}
	return p.resolutionError(tx.ResolveFact(ctx, f), "fact")
}

// HandleFact parses a fact statement and asserts every fact it names, firing
// the rules those facts are the reason for. The current token must be the
// fact keyword; on return it is the ';' or where parsing failed.
func (p *Parser) HandleFact(ctx context.Context, knowledge *kb.KnowledgeBase) (*Statement, error) {
	pos := p.lex.Position()
	facts, err := p.ParseFact()
	if err != nil {
		return nil, err
	}

	stmt := &Statement{Kind: StatementFact, Position: pos}
	err = knowledge.Transaction(ctx, func(tx *kb.KnowledgeBase) error {
		var verbID int64
		for i := range facts {
			f := &facts[i]
			f.IsTrue = true
			if err := p.resolveFact(ctx, tx, f, verbID); err != nil {
				return err
			}
			verbID = f.Verb.ID

			promoted, err := tx.CheckRule(ctx, *f)
			if err != nil {
				return errors.Wrapf(err, "failed to check rules for %s", f)
			}
			stmt.Promoted += promoted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stmt.Facts = facts
	p.logStatement(stmt)
	return stmt, nil
}

// HandleRule parses a rule statement and stores it. The reason is stored
// first; when it is already true the consequent is stored as true.
func (p *Parser) HandleRule(ctx context.Context, knowledge *kb.KnowledgeBase) (*Statement, error) {
	pos := p.lex.Position()
	rule, err := p.ParseRule()
	if err != nil {
		return nil, err
	}

	stmt := &Statement{Kind: StatementRule, Position: pos}
	err = knowledge.Transaction(ctx, func(tx *kb.KnowledgeBase) error {
		if err := p.resolveFact(ctx, tx, &rule.Reason, 0); err != nil {
			return err
		}

		if rule.Reason.IsTrue {
			rule.Fact.IsTrue = true
			stmt.Promoted = 1
		}
		if err := p.resolveFact(ctx, tx, &rule.Fact, 0); err != nil {
			return err
		}

		if err := tx.ResolveRule(ctx, &rule); err != nil {
			return p.resolutionError(errors.Wrapf(err, "failed to store rule %s if %s", rule.Fact, rule.Reason), "rule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stmt.Rule = &rule
	p.logStatement(stmt)
	return stmt, nil
}

// HandleAction parses an action statement and stores the suggested action
func (p *Parser) HandleAction(ctx context.Context, knowledge *kb.KnowledgeBase) (*Statement, error) {
	pos := p.lex.Position()
	sa, err := p.ParseAction()
	if err != nil {
		return nil, err
	}

	stmt := &Statement{Kind: StatementAction, Position: pos}
	err = knowledge.Transaction(ctx, func(tx *kb.KnowledgeBase) error {
		if err := p.resolveFact(ctx, tx, &sa.Fact, 0); err != nil {
			return err
		}
		if err := p.resolutionError(tx.ResolveAction(ctx, &sa.TrueAction), "true action"); err != nil {
			return err
		}
		if err := p.resolutionError(tx.ResolveAction(ctx, &sa.FalseAction), "false action"); err != nil {
			return err
		}
		return p.resolutionError(tx.ResolveSuggestAction(ctx, &sa), "suggested action")
	})
	if err != nil {
		return nil, err
	}

	stmt.Action = &sa
	p.logStatement(stmt)
	return stmt, nil
}

func (p *Parser) logStatement(stmt *Statement) {
	p.logger.Debugw("Statement stored",
		logger.FieldSymbol, stmt.Kind.Symbol(),
		logger.FieldStatement, string(stmt.Kind),
		logger.FieldFile, p.lex.Name(),
		logger.FieldLine, stmt.Position.Line,
		logger.FieldCount, len(stmt.Facts),
		"promoted", stmt.Promoted,
	)
}
