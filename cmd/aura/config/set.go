package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file stored in
the .aura/ directory. The value is validated before the file is written, so
an unknown provider or a malformed duration leaves the file unchanged.

A running "aura serve" picks up scanner.on_oracle_failure changes
immediately; other keys apply on the next start.

Examples:
  aura config set oracle.provider anthropic
  aura config set scanner.tick 5m
  aura config set almanac.days_ahead 7`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	shown := value
	if key == "oracle.api_key" {
		shown = redact(value)
	}

	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(shown),
	)
	return nil
}

// redact keeps the last four characters of a secret.
func redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
