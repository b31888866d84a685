package stack

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonzFong/aura-editor/pkg/config"
	"github.com/jasonzFong/aura-editor/pkg/dotdir"
	"github.com/jasonzFong/aura-editor/pkg/logger"
)

// Resolved is the layered configuration of one command invocation.
type Resolved struct {
	Config *config.Config
	Viper  *viper.Viper

	// Dir is the resolved .aura directory.
	Dir string
}

// Resolve reads defaults, config.toml, AURA_* variables and the flags of cmd
// registered under flagKeys, in increasing precedence.
func Resolve(cmd *cobra.Command, flagKeys ...string) (*Resolved, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, err
	}

	return &Resolved{Config: cfg, Viper: v, Dir: dir}, nil
}

// Logger builds the command logger from the persistent --debug flag.
// Interactive commands log to stderr so their output stays clean.
func Logger(cmd *cobra.Command, opts ...logger.Option) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	base := []logger.Option{
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	}
	return logger.New(append(base, opts...)...)
}
