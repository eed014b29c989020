package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/models"
	"github.com/teranos/obelisk/sym"
)

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query LEFT VERB RIGHT",
		Short: sym.Query + " Tell whether a fact is true",
		Long: sym.Query + ` query - Tell whether a fact is true

Prints true or false for a stored fact. A fact the knowledge base has
never seen is an error.

Examples:
  obelisk query player can die
  obelisk query "martin cromer" is happy --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			knowledge, err := opts.openKB(cmd.Context())
			if err != nil {
				return err
			}
			defer knowledge.Close()

			left, verb, right := factArgs(args)
			fact, err := knowledge.QueryFact(cmd.Context(), left, verb, right)
			if err != nil {
				if errors.IsNotFoundError(err) {
					return errors.WithHint(err, "compile a source that states it first")
				}
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), fact)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", sym.Query, fact, truth(fact))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output the fact as JSON")
	return cmd
}

func newSuggestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest LEFT VERB RIGHT",
		Short: sym.Suggest + " Print the action suggested for a fact",
		Long: sym.Suggest + ` suggest - Print the action suggested for a fact

Picks the true or false action of the fact's action statement according
to whether the fact currently holds.

Examples:
  obelisk suggest light is red`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			knowledge, err := opts.openKB(cmd.Context())
			if err != nil {
				return err
			}
			defer knowledge.Close()

			left, verb, right := factArgs(args)
			fact := models.NewFact(left, verb, right)
			action, err := knowledge.QuerySuggestAction(cmd.Context(), fact)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), action)
			return nil
		},
	}
}

// factArgs accepts names with or without the quotes of the source syntax.
// Runs of whitespace collapse as they do inside quoted names.
func factArgs(args []string) (left, verb, right string) {
	unquote := func(s string) string { return strings.Join(strings.Fields(strings.Trim(s, `"`)), " ") }
	return unquote(args[0]), args[1], unquote(args[2])
}

func truth(f models.Fact) string {
	if f.IsTrue {
		return pterm.Green("true")
	}
	return pterm.Red("false")
}
