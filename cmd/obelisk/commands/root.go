// Package commands implements the obelisk command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teranos/obelisk/am"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/kb"
	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/sym"
	"github.com/teranos/obelisk/version"
)

// globalOptions are the flags every command shares
type globalOptions struct {
	kbPath    string
	verbosity int
	logJSON   bool

	cfg *am.Config
}

// NewRootCmd builds the obelisk command tree. Run with source files it
// compiles them into the knowledge base.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "obelisk [-k FILE] [-v] SOURCE...",
		Short: "obelisk - compile facts, rules and actions into a knowledge base",
		Long: `obelisk - compile facts, rules and actions into a knowledge base.

Source files hold three kinds of statement:

  ` + sym.Fact + ` fact("chris" and "martin" is "happy");
  ` + sym.Rule + ` rule("player" can "die" if "enemy" is "dangerous");
  ` + sym.Action + ` action(if "light" is "red" then "stop" else "go");

Each statement is stored in a SQLite knowledge base as it is read. A fact
that is the reason of a rule makes the rule's fact true.

Examples:
  obelisk game.obk                      # Compile into ./obelisk.kb
  obelisk -k game.kb rules.obk facts.obk
  obelisk query "player" can "die"      # Is the fact true?
  obelisk suggest "light" is "red"      # Which action applies?
  obelisk watch game.obk                # Recompile on every save
  obelisk db stats                      # Row counts
  obelisk am show                       # Effective configuration`,
		Version:       version.Get().String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCompile(cmd, opts, args)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.kbPath, "kb", "k", "", "Knowledge base file (default from config, else "+am.DefaultDatabasePath+")")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")

	root.AddCommand(
		newCompileCmd(opts),
		newQueryCmd(opts),
		newSuggestCmd(opts),
		newWatchCmd(opts),
		newDbCmd(opts),
		newAmCmd(opts),
		newVersionCmd(),
	)
	return root
}

// init loads configuration and sets up logging before any command runs
func (o *globalOptions) init() error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	o.cfg = cfg

	if err := logger.Initialize(o.logJSON || cfg.Log.JSON, o.verbosity+cfg.Log.Verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.SymbolInfow(sym.AM, "Configuration loaded",
		logger.FieldPath, am.FindProjectConfig(),
		"verbosity", logger.LevelName(o.verbosity+cfg.Log.Verbosity))
	return nil
}

// databasePath returns the knowledge base path: the flag, else the config
func (o *globalOptions) databasePath() string {
	if o.kbPath != "" {
		return o.kbPath
	}
	if o.cfg != nil {
		return o.cfg.GetDatabasePath()
	}
	return am.DefaultDatabasePath
}

// openKB opens the knowledge base, creating its schema if needed
func (o *globalOptions) openKB(ctx context.Context) (*kb.KnowledgeBase, error) {
	return kb.Open(ctx, o.databasePath(), logger.ComponentLogger("kb"))
}
