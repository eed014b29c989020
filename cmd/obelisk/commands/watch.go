package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/obelisk/am"
	"github.com/teranos/obelisk/compiler"
	"github.com/teranos/obelisk/logger"
	"github.com/teranos/obelisk/sym"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch SOURCE...",
		Short: sym.Watch + " Recompile sources whenever they change",
		Long: sym.Watch + ` watch - Recompile sources whenever they change

Compiles once, then again after every save. Edits to the project am.toml
take effect on the next run. Stop with Ctrl-C.

Examples:
  obelisk watch game.obk
  obelisk -k game.kb watch rules.obk facts.obk`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			knowledge, err := opts.openKB(ctx)
			if err != nil {
				return err
			}
			defer knowledge.Close()

			c := compiler.New(knowledge, logger.ComponentLogger("compiler"), opts.compileOptions())
			sw, err := c.NewSourceWatcher(args)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			sw.OnCompile(func(res *compiler.Result, err error) {
				printStatementErrors(errOut, res.Errors)
				printResult(out, res, knowledge.Path())
				if err != nil && !compiler.IsCompileError(err) {
					fmt.Fprintln(errOut, FormatError(err))
				}
			})

			if path := am.FindProjectConfig(); path != "" {
				cw, err := am.NewConfigWatcher(path, logger.ComponentLogger("am"))
				if err != nil {
					logger.Warnw("Config changes will not be picked up", logger.FieldPath, path, logger.FieldError, err.Error())
				} else {
					am.SetGlobalWatcher(cw)
					defer am.SetGlobalWatcher(nil)
					cw.OnReload(func(cfg *am.Config) error {
						opts.cfg = cfg
						sw.SetOptions(opts.compileOptions())
						return nil
					})
					cw.Start()
					defer cw.Stop()
				}
			}

			fmt.Fprintf(out, "%s watching %d %s, Ctrl-C to stop\n", sym.Watch, len(args), plural(len(args), "file", "files"))
			sw.Start(ctx)
			<-ctx.Done()
			return sw.Stop()
		},
	}
}
