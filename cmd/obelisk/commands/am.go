package commands

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/obelisk/am"
	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/sym"
)

func newAmCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: sym.AM + " Manage obelisk configuration",
		Long: sym.AM + ` am - Manage obelisk configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/obelisk/am.toml)
3. User config (~/.obelisk/am.toml)
4. Project config (nearest am.toml in this or a parent directory)
5. Environment variables (OBELISK_* prefix, OBELISK_KB for the database)
6. Command line flags

Examples:
  obelisk am show                        # Show current configuration
  obelisk am show --format json
  obelisk am get database.path
  obelisk am set compile.continue_on_error false
  obelisk am init                        # Write ./am.toml
  obelisk am where                       # Where each setting comes from`,
	}
	cmd.AddCommand(
		newAmShowCmd(opts),
		newAmGetCmd(),
		newAmSetCmd(),
		newAmInitCmd(),
		newAmWhereCmd(),
	)
	return cmd
}

func newAmShowCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeConfig(cmd.OutOrStdout(), opts.cfg, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")
	return cmd
}

func writeConfig(w io.Writer, cfg *am.Config, format string) error {
	switch format {
	case "json":
		return printJSON(w, cfg)

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(w, "# obelisk configuration\n%s", data)

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(w, "# obelisk configuration\n%s", data)

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
	}
	return nil
}

func newAmGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a specific configuration value",
		Long:  "Get a specific configuration value using dot notation (e.g., database.path, compile.debounce_ms)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !am.GetViper().IsSet(key) {
				return errors.Newf("configuration key %q not found", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
			return nil
		},
	}
}

func newAmSetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change a setting in am.toml",
		Long: `Change one setting in a config file, keeping the others. Writes the
project am.toml in the working directory unless --file is given. The
previous file is kept as .back1.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				var err error
				if path, err = am.ProjectConfigPath(); err != nil {
					return err
				}
			}
			if err := am.SetValue(path, args[0], am.ParseValue(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s in %s\n", sym.AM, args[0], args[1], path)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "file", "", "Config file to change")
	return cmd
}

func newAmInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Write a starter am.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			written, err := am.InitConfig(path, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", sym.AM, written)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (it is kept as .back1)")
	return cmd
}

func newAmWhereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where",
		Short: "Show where each setting comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intro, err := am.GetConfigIntrospection()
			if err != nil {
				return errors.Wrap(err, "failed to get config introspection")
			}

			w := cmd.OutOrStdout()
			if len(intro.Files) == 0 {
				fmt.Fprintln(w, "No config files found; using defaults and environment.")
			} else {
				fmt.Fprintln(w, "Config files merged:")
				for _, f := range intro.Files {
					fmt.Fprintf(w, "  %s\n", f)
				}
			}
			fmt.Fprintln(w)

			for _, setting := range intro.Settings {
				source := string(setting.Source)
				if setting.SourcePath != "" && setting.Source != am.SourceDefault {
					source += " (" + setting.SourcePath + ")"
				}
				fmt.Fprintf(w, "  %s = %v  [%s]\n", setting.Key, setting.Value, source)
			}
			return nil
		},
	}
}
