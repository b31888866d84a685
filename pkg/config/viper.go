package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jasonzFong/aura-editor/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "AURA"

// InitViper returns a viper instance layered, lowest first, as: defaults
// from NewDefaultConfig, config.toml in the resolved aura directory, and
// AURA_* environment variables (AURA_ORACLE_PROVIDER for oracle.provider).
// Flags are layered on top by BindRegisteredFlags. A missing config.toml
// is not an error.
func InitViper(configDir string) (*viper.Viper, error) {
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	v := defaults()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// FromViper resolves the effective Config from every layer of v and
// validates it. Keys resolving to an empty value keep their default.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, key := range ValidConfigKeys() {
		value := v.GetString(key)
		if value == "" {
			continue
		}
		if err := configKeys[key].set(cfg, value); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setViperDefaults copies every key of NewDefaultConfig into v.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, key := range ValidConfigKeys() {
		v.SetDefault(key, configKeys[key].get(d))
	}
}
