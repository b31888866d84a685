package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their current values from the
config.toml file stored in the .aura/ directory. Keys missing from the file
show their defaults. The API key is redacted.

Examples:
  aura config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("Using config file: %s\n\n", cfger.GetTarget())

	keys := config.ValidConfigKeys()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		switch {
		case value == "":
			value = cliui.DimStyle.Render("<not set>")
		case key == "oracle.api_key":
			value = redact(value)
		}
		rows = append(rows, []string{key, value})
	}

	fmt.Println(cliui.Table([]string{"Key", "Value"}, rows))
	return nil
}
