// Package compiler drives source files through the parser into a knowledge
// base, one statement at a time.
package compiler

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/kb"
	"github.com/teranos/obelisk/lexer"
	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/parser"
	"github.com/teranos/obelisk/sym"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle
const DefaultDebounce = 500 * time.Millisecond

// Options tune a compile run
type Options struct {
	// ContinueOnError resynchronises at the next ';' after a rejected
	// statement. When false the run stops at the first one.
	ContinueOnError bool

	// Debounce is the quiet period Watch waits for before recompiling
	Debounce time.Duration
}

// DefaultOptions returns the options the CLI starts from
func DefaultOptions() Options {
	return Options{
		ContinueOnError: true,
		Debounce:        DefaultDebounce,
	}
}

// Result summarises one compile run
type Result struct {
	RunID      string
	Files      int
	Statements int // Statements stored
	Facts      int // Facts asserted by fact statements
	Rules      int
	Actions    int
	Promoted   int // Consequents made true by rules
	Errors     []error
	Duration   time.Duration

	started time.Time
}

// Failed returns the number of rejected statements
func (r *Result) Failed() int {
	return len(r.Errors)
}

// Compiler feeds sources to the parser and stores what they say
type Compiler struct {
	kb     *kb.KnowledgeBase
	logger *zap.SugaredLogger
	opts   Options
}

// New creates a compiler writing into knowledge. If logger is nil, operates silently.
func New(knowledge *kb.KnowledgeBase, log *zap.SugaredLogger, opts Options) *Compiler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Compiler{
		kb:     knowledge,
		logger: logger.OrNop(log),
		opts:   opts,
	}
}

// CompileFiles compiles paths in order. The result is always returned;
// the error is a *CompileError when only statements failed, or the error
// that halted the run.
func (c *Compiler) CompileFiles(ctx context.Context, paths []string) (*Result, error) {
	res, ctx, log := c.begin(ctx)

	for _, path := range paths {
		lex, err := lexer.Open(path)
		if err != nil {
			return c.end(res, log, err)
		}
		err = c.compile(ctx, lex, res, log)
		lex.Close()
		res.Files++
		if err != nil {
			return c.end(res, log, err)
		}
	}
	return c.end(res, log, nil)
}

// CompileReader compiles one source read from r; name labels positions
func (c *Compiler) CompileReader(ctx context.Context, r io.Reader, name string) (*Result, error) {
	res, ctx, log := c.begin(ctx)
	err := c.compile(ctx, lexer.New(r, name), res, log)
	res.Files++
	return c.end(res, log, err)
}

func (c *Compiler) begin(ctx context.Context) (*Result, context.Context, *zap.SugaredLogger) {
	res := &Result{RunID: uuid.NewString(), started: time.Now()}
	ctx = logger.WithComponent(logger.WithRunID(ctx, res.RunID), "compiler")
	log := logger.FromContext(ctx, c.logger)
	log.Infow("Compile started", logger.FieldSymbol, sym.Run, logger.FieldPath, c.kb.Path())
	return res, ctx, log
}

func (c *Compiler) end(res *Result, log *zap.SugaredLogger, err error) (*Result, error) {
	res.Duration = time.Since(res.started)
	if err == nil && len(res.Errors) > 0 {
		err = &CompileError{Errors: res.Errors}
	}

	fields := []interface{}{
		logger.FieldSymbol, sym.Done,
		"files", res.Files,
		"statements", res.Statements,
		"failed", res.Failed(),
		"promoted", res.Promoted,
		logger.FieldDurationMS, res.Duration.Milliseconds(),
	}
	if err != nil && !IsCompileError(err) {
		log.Errorw("Compile halted", append(fields, logger.FieldError, err.Error())...)
	} else {
		log.Infow("Compile finished", fields...)
	}
	return res, err
}

// compile runs the statement loop over one source. Only errors that halt
// the run are returned; rejected statements are recorded in res.
func (c *Compiler) compile(ctx context.Context, lex *lexer.Lexer, res *Result, log *zap.SugaredLogger) error {
	log = log.With(logger.FieldFile, lex.Name())
	log.Debugw("Compiling source", logger.FieldSymbol, sym.Lex)

	p := parser.New(lex, log)
	if _, err := p.NextToken(); err != nil {
		if err := c.reject(p, res, log, err); err != nil {
			return err
		}
	}

	for p.Current() != lexer.TokenEOF {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "compile interrupted")
		}

		var stmt *parser.Statement
		var err error
		switch p.Current() {
		case lexer.TokenFact:
			stmt, err = p.HandleFact(ctx, c.kb)
		case lexer.TokenRule:
			stmt, err = p.HandleRule(ctx, c.kb)
		case lexer.TokenAction:
			stmt, err = p.HandleAction(ctx, c.kb)
		}

		if err != nil {
			if err := c.reject(p, res, log, err); err != nil {
				return err
			}
			if err := p.SkipStatement(); err != nil {
				return err
			}
		} else if stmt != nil {
			res.record(stmt)
		}

		if p.Current() == lexer.TokenEOF {
			break
		}
		if _, err := p.NextToken(); err != nil {
			if err := c.reject(p, res, log, err); err != nil {
				return err
			}
		}
	}
	return nil
}

// reject records a statement error and reports whether the run must stop
func (c *Compiler) reject(p *parser.Parser, res *Result, log *zap.SugaredLogger, err error) error {
	if !isStatementError(err) {
		return err
	}
	res.Errors = append(res.Errors, err)
	log.Debugw("Statement rejected",
		logger.FieldLine, p.Lexer().Position().Line,
		logger.FieldError, err.Error(),
	)
	if !c.opts.ContinueOnError {
		return &CompileError{Errors: res.Errors}
	}
	return nil
}

func (r *Result) record(stmt *parser.Statement) {
	r.Statements++
	r.Promoted += stmt.Promoted
	switch stmt.Kind {
	case parser.StatementFact:
		r.Facts += len(stmt.Facts)
	case parser.StatementRule:
		r.Rules++
	case parser.StatementAction:
		r.Actions++
	}
}
