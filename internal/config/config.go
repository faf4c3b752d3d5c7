// Package config defines pipeline configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and LOADMON_ environment variables on top.
// - Errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"slices"

	"github.com/okian/loadmon/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir holds players.csv, sessions.csv and wellness.csv.
	DataDir string `koanf:"data_dir"`

	// OutDir receives reports, figures and BI tables.
	OutDir string `koanf:"out_dir"`

	// Windows are the rolling load window sizes, in rows.
	Windows []int `koanf:"windows"`

	// MinPeriods is the minimum non-missing observations per window.
	MinPeriods int `koanf:"min_periods"`

	// LoadColumn is the session column the rolling engine sums.
	LoadColumn string `koanf:"load_column"`

	// FillMode is forward-fill, backward-fill or none.
	FillMode string `koanf:"fill_mode"`

	// ReadinessMethod names the readiness formula; only simple exists.
	ReadinessMethod string `koanf:"readiness_method"`

	// Standardize z-scores readiness within each player.
	Standardize bool `koanf:"standardize"`

	// FlagLoadColumn drives the load spike flag. Empty derives it from
	// LoadColumn and the shortest window.
	FlagLoadColumn string `koanf:"flag_load_column"`

	// FlagReadinessColumn drives the low readiness flag.
	FlagReadinessColumn string `koanf:"flag_readiness_column"`

	// LoadSpikePct is the fractional load change above which a spike is flagged.
	LoadSpikePct float64 `koanf:"load_spike_pct"`

	// LowReadinessThreshold is the readiness below which a player is flagged.
	LowReadinessThreshold float64 `koanf:"low_readiness_threshold"`

	// RequireKnownPlayers fails the merge for player ids missing from players.csv.
	RequireKnownPlayers bool `koanf:"require_known_players"`

	// SnapshotDate is the report as-of date; empty means the latest date.
	SnapshotDate string `koanf:"snapshot_date"`

	// SnapshotPlayers selects snapshot players; empty picks them automatically.
	SnapshotPlayers []string `koanf:"snapshot_players"`

	// LookbackDays bounds the snapshot chart.
	LookbackDays int `koanf:"lookback_days"`

	// BIFormats selects csv and/or xlsx BI output.
	BIFormats []string `koanf:"bi_formats"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		DataDir:               "data",
		OutDir:                "outputs",
		Windows:               []int{7, 28},
		MinPeriods:            1,
		LoadColumn:            model.ColInternalLoad,
		FillMode:              "forward-fill",
		ReadinessMethod:       "simple",
		Standardize:           true,
		FlagReadinessColumn:   model.ColReadinessScore,
		LoadSpikePct:          0.25,
		LowReadinessThreshold: -1.0,
		RequireKnownPlayers:   true,
		LookbackDays:          28,
		BIFormats:             []string{"csv", "xlsx"},
	}
}

// DerivedFlagLoadColumn returns FlagLoadColumn, or <load_column>_<shortest window>d
// when it is empty.
func (c *Config) DerivedFlagLoadColumn() string {
	if c.FlagLoadColumn != "" || len(c.Windows) == 0 {
		return c.FlagLoadColumn
	}
	return fmt.Sprintf("%s_%dd", c.LoadColumn, slices.Min(c.Windows))
}
