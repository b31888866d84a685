// Package initcmder provides the init command for initializing a local .aura
// directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonzFong/aura-editor/pkg/cliui"
	"github.com/jasonzFong/aura-editor/pkg/config"
)

const (
	dirName    = ".aura"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .aura/ directory in the current working directory.

Creates a local .aura/ directory, which takes precedence over ~/.aura/, and
writes a config.toml with default values. The SQLite database is created
there on first use.

Use --preset to configure the oracle for a provider:
  deepseek, openai, anthropic, ollama

An existing config.toml is never overwritten.

Examples:
  aura init
  aura init --preset anthropic`

const initShortDesc string = "Initialize a local .aura/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		"Oracle preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(preset string) error {
	cfg := config.NewDefaultConfig()
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .aura directory: %w", err)
	}

	_, err = os.Stat(filepath.Join(dir, configFile))
	switch {
	case err == nil:
		fmt.Printf("\n  %s Already initialized: %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("checking config: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("\n  %s Initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("oracle:"), cliui.ValueStyle.Render(cfg.Oracle.Provider))
	return nil
}
