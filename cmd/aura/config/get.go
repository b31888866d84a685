package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Prints the value of key as stored in config.toml, or its default when the
file does not set it. Environment overrides (AURA_*) are not applied here.

Examples:
  aura config get oracle.provider
  aura config get scanner.on_oracle_failure`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(args[0], configDir, raw)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the value, unredacted, for scripts")

	return cmd
}

func runGet(key, configDir string, raw bool) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if raw {
		fmt.Println(value)
		return nil
	}

	if key == "oracle.api_key" {
		value = redact(value)
	}
	if value == "" {
		value = cliui.DimStyle.Render("<not set>")
	} else {
		value = cliui.ValueStyle.Render(value)
	}

	fmt.Printf("\n  %s  %s\n  %s\n\n",
		cliui.KeyStyle.Render(key),
		value,
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
