package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/loadmon/internal/adapters/export"
	"github.com/okian/loadmon/internal/domain/features"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/internal/domain/preprocess"
)

// Validate checks every field and the closed option sets.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log_level", fmt.Errorf("unknown level %q", c.LogLevel))
	}
	if c.DataDir == "" {
		return invalid("data_dir", fmt.Errorf("must not be empty"))
	}
	if c.OutDir == "" {
		return invalid("out_dir", fmt.Errorf("must not be empty"))
	}
	if len(c.Windows) == 0 {
		return invalid("windows", fmt.Errorf("at least one window is required"))
	}
	for _, w := range c.Windows {
		if w < 1 {
			return invalid("windows", fmt.Errorf("window %d must be >= 1", w))
		}
		if c.MinPeriods > w {
			return invalid("min_periods", fmt.Errorf("%d exceeds window %d", c.MinPeriods, w))
		}
	}
	if c.MinPeriods < 1 {
		return invalid("min_periods", fmt.Errorf("%d must be >= 1", c.MinPeriods))
	}
	if _, ok := (model.SessionRecord{}).Value(c.LoadColumn); !ok {
		return invalid("load_column", fmt.Errorf("%q is not a session column: %w", c.LoadColumn, model.ErrUnsupportedOption))
	}
	if _, err := preprocess.ParseFillMode(c.FillMode); err != nil {
		return invalid("fill_mode", err)
	}
	if _, err := features.ParseMethod(c.ReadinessMethod); err != nil {
		return invalid("readiness_method", err)
	}
	if c.SnapshotDate != "" {
		if _, err := time.Parse(model.DateLayout, c.SnapshotDate); err != nil {
			return invalid("snapshot_date", err)
		}
	}
	if c.LookbackDays < 1 {
		return invalid("lookback_days", fmt.Errorf("%d must be >= 1", c.LookbackDays))
	}
	if _, err := export.ParseFormats(c.BIFormats); err != nil {
		return invalid("bi_formats", err)
	}
	return nil
}
