package config

const (
	defaultStorageDriver = "sqlite"
	defaultSQLiteFile    = "aura.db"

	defaultAPIListen = ":8000"

	defaultOracleProvider = "deepseek"

	defaultScanTick       = "1m"
	defaultScanWorkers    = 1
	defaultOracleFailure  = "stamp"
	defaultAlmanacDays    = 3
	defaultAlmanacRunAt   = "00:01"
	defaultEventsProvider = "nop"
	defaultEventsTopic    = "aura.memory"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. An empty
// Storage.SQLitePath resolves to aura.db inside the .aura/ directory.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Oracle: OracleConfig{
			Provider: defaultOracleProvider,
		},
		Scanner: ScannerConfig{
			Enabled:         true,
			Tick:            defaultScanTick,
			Workers:         defaultScanWorkers,
			OnOracleFailure: defaultOracleFailure,
		},
		Almanac: AlmanacConfig{
			Enabled:   true,
			DaysAhead: defaultAlmanacDays,
			RunAt:     defaultAlmanacRunAt,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}
