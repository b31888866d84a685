package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes a CLI flag that overrides one config key. Commands share
// these definitions so a flag means the same thing everywhere.
type Flag struct {
	Name        string
	Shorthand   string // optional
	ViperKey    string // dotted config key, e.g. "api.listen"
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen          = "listen"
	FlagStorageDriver   = "storage"
	FlagSQLite          = "sqlite"
	FlagPostgres        = "postgres"
	FlagOracleProvider  = "provider"
	FlagOracleModel     = "model"
	FlagOracleBaseURL   = "base-url"
	FlagOnOracleFailure = "on-oracle-failure"
	FlagScanWorkers     = "workers"
	FlagScanTick        = "tick"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagListen:          {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagStorageDriver:   {Name: "storage", ViperKey: "storage.driver", Description: "Storage driver (sqlite, postgres, memory)"},
	FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite database"},
	FlagPostgres:        {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagOracleProvider:  {Name: "provider", Shorthand: "p", ViperKey: "oracle.provider", Description: "Oracle provider (deepseek, openai, anthropic, ollama, mock)"},
	FlagOracleModel:     {Name: "model", Shorthand: "m", ViperKey: "oracle.model", Description: "Oracle model name"},
	FlagOracleBaseURL:   {Name: "base-url", ViperKey: "oracle.base_url", Description: "Oracle API base URL"},
	FlagOnOracleFailure: {Name: "on-oracle-failure", ViperKey: "scanner.on_oracle_failure", Description: "What to do with a document whose oracle call fails (stamp, retry)"},
	FlagScanWorkers:     {Name: "workers", ViperKey: "scanner.workers", Description: "Number of concurrent scan workers"},
	FlagScanTick:        {Name: "tick", ViperKey: "scanner.tick", Description: "Interval between scan scheduling ticks"},
}

// AddStringFlag registers the string flag fs[key] on cmd, defaulting to the
// value NewDefaultConfig gives its config key. Unknown keys are ignored.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	if def, ok := fs[key]; ok {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaults().GetString(def.ViperKey), def.Description)
	}
}

// AddUintFlag is AddStringFlag for uint flags.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	if def, ok := fs[key]; ok {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaults().GetUint(def.ViperKey), def.Description)
	}
}

// BindRegisteredFlags binds the flags of cmd named by keys to their config
// keys in v, so a flag the user set wins over env, file and default.
// Keys that are unknown or not registered on cmd are skipped.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		if f := cmd.Flags().Lookup(def.Name); f != nil {
			_ = v.BindPFlag(def.ViperKey, f)
		}
	}
}

// defaults returns a viper instance holding only the built-in defaults.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
