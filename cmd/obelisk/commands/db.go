package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/kb"
	"github.com/teranos/obelisk/sym"
)

func newDbCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: sym.DB + " Inspect and move knowledge bases",
		Long: sym.DB + ` db - Inspect and move knowledge bases

Examples:
  obelisk db stats                    # Row counts per table
  obelisk db dump > game.yaml         # Snapshot by names
  obelisk -k copy.kb db load game.yaml`,
	}
	cmd.AddCommand(newDbStatsCmd(opts), newDbDumpCmd(opts), newDbLoadCmd(opts))
	return cmd
}

func newDbStatsCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			knowledge, err := opts.openKB(cmd.Context())
			if err != nil {
				return err
			}
			defer knowledge.Close()

			stats, err := knowledge.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			return printStats(cmd.OutOrStdout(), knowledge.Path(), stats)
		},
	}
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output statistics as JSON")
	return cmd
}

func printStats(w io.Writer, path string, stats kb.Stats) error {
	count := func(n int64) string { return strconv.FormatInt(n, 10) }
	table, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Table", "Rows"},
		{"entities", count(stats.Entities)},
		{"verbs", count(stats.Verbs)},
		{"actions", count(stats.Actions)},
		{"facts", count(stats.Facts)},
		{"  true", count(stats.TrueFacts)},
		{"rules", count(stats.Rules)},
		{"suggested actions", count(stats.SuggestActions)},
	}).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render statistics")
	}

	fmt.Fprintf(w, "%s %s\n\n%s\n", sym.DB, path, table)
	return nil
}

func newDbDumpCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump [FILE]",
		Short: "Write a snapshot of the knowledge base",
		Long: `Write every name, fact, rule and suggested action as YAML or JSON.
Without FILE the snapshot goes to standard output. The format follows the
file extension unless --format is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			knowledge, err := opts.openKB(cmd.Context())
			if err != nil {
				return err
			}
			defer knowledge.Close()

			snap, err := knowledge.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return snap.Encode(cmd.OutOrStdout(), pickFormat(format, ""))
			}

			f, err := os.Create(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to create %s", args[0])
			}
			if err := snap.Encode(f, pickFormat(format, args[0])); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrapf(err, "failed to write %s", args[0])
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d facts written to %s\n", sym.DB, len(snap.Facts), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Snapshot format: yaml, json")
	return cmd
}

func newDbLoadCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "load FILE",
		Short: "Merge a snapshot into the knowledge base",
		Long: `Merge a snapshot written by db dump. Names are matched, not ids, so
snapshots load into any knowledge base. Facts only ever become true.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open %s", args[0])
			}
			defer f.Close()

			snap, err := kb.DecodeSnapshot(f, pickFormat(format, args[0]))
			if err != nil {
				return err
			}

			knowledge, err := opts.openKB(cmd.Context())
			if err != nil {
				return err
			}
			defer knowledge.Close()

			if err := knowledge.Load(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s loaded %d facts, %d rules, %d suggested actions into %s\n",
				sym.DB, len(snap.Facts), len(snap.Rules), len(snap.SuggestActions), knowledge.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Snapshot format: yaml, json")
	return cmd
}

// pickFormat prefers an explicit format, then the file extension
func pickFormat(format, path string) string {
	if format != "" {
		return format
	}
	return kb.FormatForPath(path)
}
