// Package config loads, validates and persists the aura configuration
// (config.toml in the .aura/ directory) and layers it with environment
// variables and CLI flags through viper.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jasonzFong/aura-editor/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// Supported values of the enumerated settings.
var (
	StorageDrivers  = []string{"sqlite", "postgres", "memory"}
	OracleProviders = []string{"deepseek", "openai", "anthropic", "ollama", "mock"}
	FailurePolicies = []string{"stamp", "retry"}
	EventsProviders = []string{"nop", "kafka"}
)

type Configer struct {
	ddm        *dotdir.Manager
	dir        string
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.dir = target
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in the
// order of the TOML section layout.
func ValidConfigKeys() []string {
	ordered := []string{
		"storage.driver",
		"storage.sqlite_path",
		"storage.postgres_dsn",
		"api.listen",
		"oracle.provider",
		"oracle.model",
		"oracle.base_url",
		"oracle.api_key",
		"scanner.enabled",
		"scanner.tick",
		"scanner.workers",
		"scanner.on_oracle_failure",
		"almanac.enabled",
		"almanac.days_ahead",
		"almanac.run_at",
		"events.provider",
		"events.brokers",
		"events.topic",
		"mcp.enabled",
	}

	result := make([]string, 0, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	var missed []string
	for k := range configKeys {
		if !slices.Contains(result, k) {
			missed = append(missed, k)
		}
	}
	slices.Sort(missed)

	return append(result, missed...)
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// GetTarget returns the config file path.
func (c *Configer) GetTarget() string {
	return c.targetPath
}

// Dir returns the resolved .aura/ directory.
func (c *Configer) Dir() string {
	return c.dir
}

// LoadConfig loads config.toml from the target .aura/ directory. Keys absent
// from the file keep their NewDefaultConfig value, so callers always receive
// a fully-populated Config.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfigTOML(data)
}

// SaveConfig persists the configuration to config.toml in the target .aura/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value,
// validates the result and saves it.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns the default Config with the oracle section set up
// for the named provider.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "deepseek":
		cfg.Oracle = OracleConfig{Provider: "deepseek", Model: "deepseek-chat", BaseURL: "https://api.deepseek.com/v1"}
	case "openai":
		cfg.Oracle = OracleConfig{Provider: "openai", Model: "gpt-4o-mini", BaseURL: "https://api.openai.com/v1"}
	case "anthropic":
		cfg.Oracle = OracleConfig{Provider: "anthropic", Model: "claude-haiku-4-5-20251001"}
	case "ollama":
		cfg.Oracle = OracleConfig{Provider: "ollama", Model: "llama3.2", BaseURL: "http://localhost:11434"}
	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}

	return cfg, nil
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"deepseek", "openai", "anthropic", "ollama"}
}

// ParseConfigTOML parses raw TOML bytes on top of NewDefaultConfig.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}

// Validate checks the enumerated and formatted settings.
func (c *Config) Validate() error {
	var errs []error

	check := func(key, value string, allowed []string) {
		if value != "" && !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("invalid %s %q (supported: %s)", key, value, strings.Join(allowed, ", ")))
		}
	}
	check("storage.driver", c.Storage.Driver, StorageDrivers)
	check("oracle.provider", c.Oracle.Provider, OracleProviders)
	check("scanner.on_oracle_failure", c.Scanner.OnOracleFailure, FailurePolicies)
	check("events.provider", c.Events.Provider, EventsProviders)

	if _, err := c.ScanTick(); err != nil {
		errs = append(errs, err)
	}
	if c.Almanac.RunAt != "" {
		if _, err := time.Parse("15:04", c.Almanac.RunAt); err != nil {
			errs = append(errs, fmt.Errorf("invalid almanac.run_at %q, expected HH:MM", c.Almanac.RunAt))
		}
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres driver"))
	}
	if c.Events.Provider == "kafka" && c.Events.Brokers == "" {
		errs = append(errs, errors.New("events.brokers is required for the kafka provider"))
	}

	return errors.Join(errs...)
}

// ScanTick parses Scanner.Tick. An empty value yields the default.
func (c *Config) ScanTick() (time.Duration, error) {
	tick := c.Scanner.Tick
	if tick == "" {
		tick = defaultScanTick
	}
	d, err := time.ParseDuration(tick)
	if err != nil {
		return 0, fmt.Errorf("invalid scanner.tick %q: %w", c.Scanner.Tick, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid scanner.tick %q: must be positive", c.Scanner.Tick)
	}
	return d, nil
}

// SQLitePath returns the configured database path, defaulting to aura.db
// inside dir.
func (c *Config) SQLitePath(dir string) string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(dir, defaultSQLiteFile)
}
