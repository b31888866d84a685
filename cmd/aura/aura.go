// Package auracmder
package auracmder

import (
	"github.com/spf13/cobra"

	almanaccmder "github.com/jasonzFong/aura-editor/cmd/aura/almanac"
	configcmder "github.com/jasonzFong/aura-editor/cmd/aura/config"
	initcmder "github.com/jasonzFong/aura-editor/cmd/aura/init"
	memoriescmder "github.com/jasonzFong/aura-editor/cmd/aura/memories"
	scancmder "github.com/jasonzFong/aura-editor/cmd/aura/scan"
	servecmder "github.com/jasonzFong/aura-editor/cmd/aura/serve"
	versioncmder "github.com/jasonzFong/aura-editor/cmd/version"
)

const auraLongDesc string = `Aura is a journaling backend that leaves AI margin notes on your writing
and quietly remembers what it learns about you.

Run the server:
  aura serve           Run the API, scanner and almanac jobs

Work with data:
  aura scan            Run a memory scan now
  aura memories        List and edit memories
  aura almanac         Show the almanac for a day

Configure:
  aura init            Create a local .aura/ directory
  aura config          Get and set config.toml values`

const auraShortDesc string = "Aura - journaling with memory"

func NewAuraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "aura",
		Short:        auraShortDesc,
		Long:         auraLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .aura/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(scancmder.NewScanCmd())
	cmd.AddCommand(memoriescmder.NewMemoriesCmd())
	cmd.AddCommand(almanaccmder.NewAlmanacCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
