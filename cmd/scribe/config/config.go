// Package configcmder provides the config command for managing persistent
// scribe configuration stored in the .scribe/ directory.
package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/cliui"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/config"
)

const configLongDesc string = `Manage persistent scribe configuration.

Configuration is stored as config.toml in the .scribe/ directory and provides
default values for command flags. CLI flags and SCRIBE_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.cors_origins, client.target,
  completion.provider, completion.base_url, completion.chat_model, ...
  stream.mode, stream.chunk_size, stream.keepalive, ...
  storage.driver, storage.sqlite_path, events.provider, log.debug

Use subcommands to get, set, or list configuration values:
  scribe config set <key> <value>    Set a configuration value
  scribe config get <key>            Get a configuration value
  scribe config list                 List all configuration values

Examples:
  scribe config set completion.provider openai
  scribe config set stream.chunk_delay 50ms
  scribe config get completion.provider
  scribe config list`

const configShortDesc string = "Manage persistent scribe configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// printTarget reports which config file a command works on.
func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
