package journal

import "time"

// Settings is the per-user preference document.
type Settings struct {
	AIEnabled      bool         `json:"ai_enabled"`
	AIFrequency    string       `json:"ai_frequency"`
	BackgroundScan ScanSettings `json:"background_scan"`
}

// ScanSettings controls the background memory scan for one user.
type ScanSettings struct {
	Enabled            bool   `json:"enabled"`
	IntervalUnit       string `json:"interval_unit,omitempty"`
	IntervalValue      int    `json:"interval_value,omitempty"`
	SkipOlderThanUnit  string `json:"skip_older_than_unit,omitempty"`
	SkipOlderThanValue int    `json:"skip_older_than_value,omitempty"`
}

const (
	defaultInterval      = 24 * time.Hour
	defaultSkipOlderThan = 14 * 24 * time.Hour

	day = 24 * time.Hour
)

// DefaultSettings returns the settings a user starts with.
func DefaultSettings() Settings {
	return Settings{
		AIEnabled:   true,
		AIFrequency: "medium",
		BackgroundScan: ScanSettings{
			IntervalUnit:       "hours",
			IntervalValue:      24,
			SkipOlderThanUnit:  "days",
			SkipOlderThanValue: 14,
		},
	}
}

// Interval is how long a scanned document must rest before it is
// considered again. Unknown units and non-positive values fall back to 24
// hours.
func (s ScanSettings) Interval() time.Duration {
	if s.IntervalValue <= 0 {
		return defaultInterval
	}
	v := time.Duration(s.IntervalValue)
	switch s.IntervalUnit {
	case "minutes":
		return v * time.Minute
	case "hours":
		return v * time.Hour
	case "days":
		return v * day
	}
	return defaultInterval
}

// SkipOlderThan is the age beyond which documents are never scanned.
// Months count as 30 days and years as 365. Unknown units and non-positive
// values fall back to 14 days.
func (s ScanSettings) SkipOlderThan() time.Duration {
	if s.SkipOlderThanValue <= 0 {
		return defaultSkipOlderThan
	}
	v := time.Duration(s.SkipOlderThanValue)
	switch s.SkipOlderThanUnit {
	case "days":
		return v * day
	case "months":
		return v * 30 * day
	case "years":
		return v * 365 * day
	}
	return defaultSkipOlderThan
}
