package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/obelisk/compiler"
	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/sym"
)

func newCompileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile SOURCE...",
		Short: sym.Run + " Compile source files into the knowledge base",
		Long: sym.Run + ` compile - Compile source files into the knowledge base

Same as running obelisk with source files. Files are compiled in order;
a rejected statement is reported and compiling resumes after its ';'
unless compile.continue_on_error is false.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args)
		},
	}
}

// compileOptions derives compiler options from configuration
func (o *globalOptions) compileOptions() compiler.Options {
	compileOpts := compiler.DefaultOptions()
	if o.cfg != nil {
		compileOpts.ContinueOnError = o.cfg.Compile.ContinueOnError
		compileOpts.Debounce = o.cfg.Debounce()
	}
	return compileOpts
}

func runCompile(cmd *cobra.Command, opts *globalOptions, paths []string) error {
	ctx := cmd.Context()

	knowledge, err := opts.openKB(ctx)
	if err != nil {
		return err
	}
	defer knowledge.Close()

	c := compiler.New(knowledge, logger.ComponentLogger("compiler"), opts.compileOptions())
	res, err := c.CompileFiles(ctx, paths)
	if res != nil {
		printStatementErrors(cmd.ErrOrStderr(), res.Errors)
		printResult(cmd.OutOrStdout(), res, knowledge.Path())
	}
	return err
}
