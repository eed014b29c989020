package parser

import (
	"github.com/teranos/obelisk/lexer"
	"github.com/teranos/obelisk/models"
)

// begin records which statement is being parsed and moves past its keyword
// onto the opening parenthesis
func (p *Parser) begin(keyword string) error {
	p.statement = keyword
	if _, err := p.NextToken(); err != nil {
		return err
	}
	return p.expect('(')
}

// finish moves from the closing parenthesis onto the terminating ';'
func (p *Parser) finish() error {
	if err := p.expect(')'); err != nil {
		return err
	}
	if _, err := p.NextToken(); err != nil {
		return err
	}
	if p.current != ';' {
		return p.syntaxError("missing ';' after statement, got " + p.describeCurrent()).
			WithSuggestion("end every statement with ';'")
	}
	return nil
}

// ParseFact reads fact ( "L1" [and "L2"...] VERB "R1" [and "R2"...] ) ;
// The current token must be the fact keyword; on success it is the ';'.
// Every left entity is paired with every right entity, all asserted true.
func (p *Parser) ParseFact() ([]models.Fact, error) {
	if err := p.begin("fact"); err != nil {
		return nil, err
	}
	if _, err := p.NextToken(); err != nil {
		return nil, err
	}

	c, err := p.parseClause(true, endAtParen)
	if err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}

	facts := make([]models.Fact, 0, len(c.left)*len(c.right))
	for _, left := range c.left {
		for _, right := range c.right {
			f := models.NewFact(left, c.verb, right)
			f.IsTrue = true
			facts = append(facts, f)
		}
	}
	return facts, nil
}

// ParseRule reads rule ( "L" VERB "R" if "LR" REASONVERB "RR" ) ;
// The current token must be the rule keyword; on success it is the ';'.
func (p *Parser) ParseRule() (models.Rule, error) {
	if err := p.begin("rule"); err != nil {
		return models.Rule{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.Rule{}, err
	}

	consequent, err := p.parseClause(false, endAtIf)
	if err != nil {
		return models.Rule{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.Rule{}, err
	}

	reason, err := p.parseClause(false, endAtParen)
	if err != nil {
		return models.Rule{}, err
	}
	if err := p.finish(); err != nil {
		return models.Rule{}, err
	}

	return models.Rule{
		Fact:   models.NewFact(consequent.left[0], consequent.verb, consequent.right[0]),
		Reason: models.NewFact(reason.left[0], reason.verb, reason.right[0]),
	}, nil
}

// ParseAction reads action ( if "L" VERB "R" then "T" else "F" ) ;
// The current token must be the action keyword; on success it is the ';'.
func (p *Parser) ParseAction() (models.SuggestAction, error) {
	if err := p.begin("action"); err != nil {
		return models.SuggestAction{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.SuggestAction{}, err
	}
	if err := p.expectWord(wordIf); err != nil {
		return models.SuggestAction{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.SuggestAction{}, err
	}

	c, err := p.parseClause(false, endAtThen)
	if err != nil {
		return models.SuggestAction{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.SuggestAction{}, err
	}

	trueAction, err := p.parseActionName("true")
	if err != nil {
		return models.SuggestAction{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.SuggestAction{}, err
	}
	if err := p.expectWord(wordElse); err != nil {
		return models.SuggestAction{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.SuggestAction{}, err
	}

	falseAction, err := p.parseActionName("false")
	if err != nil {
		return models.SuggestAction{}, err
	}
	if _, err := p.NextToken(); err != nil {
		return models.SuggestAction{}, err
	}
	if err := p.finish(); err != nil {
		return models.SuggestAction{}, err
	}

	return models.SuggestAction{
		Fact:        models.NewFact(c.left[0], c.verb, c.right[0]),
		TrueAction:  models.NewAction(trueAction),
		FalseAction: models.NewAction(falseAction),
	}, nil
}

// parseActionName reads one quoted name starting at the opening quote and
// leaves the closing quote current
func (p *Parser) parseActionName(which string) (string, error) {
	if p.current != '"' {
		return "", p.syntaxError("missing " + which + " action name").
			WithSuggestion(`quote action names, e.g. "run"`)
	}

	var words []string
	for {
		if _, err := p.NextToken(); err != nil {
			return "", err
		}
		switch p.current {
		case '"':
			name := joinWords(words)
			if name == "" {
				return "", p.syntaxError(which + " action name is empty")
			}
			return name, nil
		case lexer.TokenEOF:
			return "", p.syntaxError("unterminated quote")
		default:
			words = append(words, p.lex.Text())
		}
	}
}
