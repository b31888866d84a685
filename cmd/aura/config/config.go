// Package configcmder provides the config command for managing persistent
// aura configuration stored in the .aura/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent aura configuration.

Configuration is stored as config.toml in the .aura/ directory and provides
default values for command flags. CLI flags and AURA_* environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  api.listen,
  oracle.provider, oracle.model, oracle.base_url, oracle.api_key,
  scanner.enabled, scanner.tick, scanner.workers, scanner.on_oracle_failure,
  almanac.enabled, almanac.days_ahead, almanac.run_at,
  events.provider, events.brokers, events.topic,
  mcp.enabled

Use subcommands to get, set, or list configuration values:
  aura config set <key> <value>    Set a configuration value
  aura config get <key>            Get a configuration value
  aura config list                 List all configuration values

Examples:
  aura config set oracle.provider anthropic
  aura config set scanner.on_oracle_failure retry
  aura config get oracle.provider
  aura config list`

const configShortDesc string = "Manage persistent aura configuration"

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
