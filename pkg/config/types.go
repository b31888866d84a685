package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent aura configuration stored as config.toml
// in the .aura/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version" mapstructure:"version"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	API     APIConfig     `toml:"api" mapstructure:"api"`
	Oracle  OracleConfig  `toml:"oracle" mapstructure:"oracle"`
	Scanner ScannerConfig `toml:"scanner" mapstructure:"scanner"`
	Almanac AlmanacConfig `toml:"almanac" mapstructure:"almanac"`
	Events  EventsConfig  `toml:"events" mapstructure:"events"`
	MCP     MCPConfig     `toml:"mcp" mapstructure:"mcp"`
}

// StorageConfig selects and locates the persistence driver.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres" or "memory".
	Driver      string `toml:"driver,omitempty" mapstructure:"driver"`
	SQLitePath  string `toml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn,omitempty" mapstructure:"postgres_dsn"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty" mapstructure:"listen"`
}

// OracleConfig selects the language model behind every AI feature.
// An empty APIKey falls back to the provider's environment variable.
type OracleConfig struct {
	Provider string `toml:"provider,omitempty" mapstructure:"provider"`
	Model    string `toml:"model,omitempty" mapstructure:"model"`
	BaseURL  string `toml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey   string `toml:"api_key,omitempty" mapstructure:"api_key"`
}

// ScannerConfig controls background memory scans.
type ScannerConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`

	// Tick is a Go duration string, e.g. "1m".
	Tick    string `toml:"tick,omitempty" mapstructure:"tick"`
	Workers uint   `toml:"workers,omitempty" mapstructure:"workers"`

	// OnOracleFailure is "stamp" or "retry".
	OnOracleFailure string `toml:"on_oracle_failure,omitempty" mapstructure:"on_oracle_failure"`
}

// AlmanacConfig controls the daily almanac fill.
type AlmanacConfig struct {
	Enabled   bool   `toml:"enabled" mapstructure:"enabled"`
	DaysAhead int    `toml:"days_ahead,omitempty" mapstructure:"days_ahead"`
	RunAt     string `toml:"run_at,omitempty" mapstructure:"run_at"`
}

// EventsConfig selects where memory mutation events are published.
type EventsConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `toml:"provider,omitempty" mapstructure:"provider"`

	// Brokers is a comma separated host:port list.
	Brokers string `toml:"brokers,omitempty" mapstructure:"brokers"`
	Topic   string `toml:"topic,omitempty" mapstructure:"topic"`
}

// MCPConfig toggles the MCP tool surface of the API server.
type MCPConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver":       stringKey(func(c *Config) *string { return &c.Storage.Driver }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"oracle.provider": stringKey(func(c *Config) *string { return &c.Oracle.Provider }),
	"oracle.model":    stringKey(func(c *Config) *string { return &c.Oracle.Model }),
	"oracle.base_url": stringKey(func(c *Config) *string { return &c.Oracle.BaseURL }),
	"oracle.api_key":  stringKey(func(c *Config) *string { return &c.Oracle.APIKey }),

	"scanner.enabled": boolKey("scanner.enabled", func(c *Config) *bool { return &c.Scanner.Enabled }),
	"scanner.tick":    stringKey(func(c *Config) *string { return &c.Scanner.Tick }),
	"scanner.workers": {
		get: func(c *Config) string {
			if c.Scanner.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Scanner.Workers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for scanner.workers: %w", err)
			}
			c.Scanner.Workers = uint(n)
			return nil
		},
	},
	"scanner.on_oracle_failure": stringKey(func(c *Config) *string { return &c.Scanner.OnOracleFailure }),

	"almanac.enabled":    boolKey("almanac.enabled", func(c *Config) *bool { return &c.Almanac.Enabled }),
	"almanac.days_ahead": intKey("almanac.days_ahead", func(c *Config) *int { return &c.Almanac.DaysAhead }),
	"almanac.run_at":     stringKey(func(c *Config) *string { return &c.Almanac.RunAt }),

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers":  stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),

	"mcp.enabled": boolKey("mcp.enabled", func(c *Config) *bool { return &c.MCP.Enabled }),
}
