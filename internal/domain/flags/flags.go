// Package flags derives anomaly indicators from the merged daily table.
package flags

import (
	"fmt"
	"math"

	"github.com/okian/loadmon/internal/domain/model"
)

// Defaults.
const (
	DefaultLoadColumn            = "internal_load_7d"
	DefaultReadinessColumn       = model.ColReadinessScore
	DefaultLoadSpikeThreshold    = 0.25
	DefaultLowReadinessThreshold = -1.0
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLoadColumn sets the column whose change drives the load spike flag.
func WithLoadColumn(column string) Option {
	return func(e *Engine) {
		if column != "" {
			e.loadColumn = column
		}
	}
}

// WithReadinessColumn sets the column compared against the low readiness threshold.
func WithReadinessColumn(column string) Option {
	return func(e *Engine) {
		if column != "" {
			e.readinessColumn = column
		}
	}
}

// WithLoadSpikeThreshold sets the fractional change above which load spikes.
func WithLoadSpikeThreshold(v float64) Option {
	return func(e *Engine) {
		e.loadSpike = v
	}
}

// WithLowReadinessThreshold sets the value below which readiness is low.
func WithLowReadinessThreshold(v float64) Option {
	return func(e *Engine) {
		e.lowReadiness = v
	}
}

// Engine computes load_pct_change, flag_load_spike and flag_low_readiness.
type Engine struct {
	loadColumn      string
	readinessColumn string
	loadSpike       float64
	lowReadiness    float64
}

// New creates an Engine with the default thresholds unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		loadColumn:      DefaultLoadColumn,
		readinessColumn: DefaultReadinessColumn,
		loadSpike:       DefaultLoadSpikeThreshold,
		lowReadiness:    DefaultLowReadinessThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply returns a copy of rows, sorted by (player_id, date), with Flags set.
//
// load_pct_change is (cur - prev) / prev against the player's previous row
// and is undefined on the first row, when either value is missing, or when
// both are zero. A rise from zero is +Inf. Flags are never missing: an
// undefined input yields false.
func (e *Engine) Apply(rows []model.DailyRow) ([]model.DailyRow, error) {
	out := model.SortDaily(rows)
	if len(out) > 0 {
		for _, col := range []string{e.loadColumn, e.readinessColumn} {
			if _, ok := out[0].Value(col); !ok {
				return nil, fmt.Errorf("flag column %q: %w", col, model.ErrUnsupportedOption)
			}
		}
	}

	groups := model.Partition(len(out), func(i int) string { return out[i].PlayerID })
	for _, idx := range groups {
		var prev *float64
		for j, i := range idx {
			cur, _ := out[i].Value(e.loadColumn)
			f := &model.Flags{}
			if j > 0 {
				f.LoadPctChange = pctChange(prev, cur)
			}
			f.LoadSpike = f.LoadPctChange != nil && *f.LoadPctChange > e.loadSpike
			if r, _ := out[i].Value(e.readinessColumn); r != nil {
				f.LowReadiness = *r < e.lowReadiness
			}
			out[i].Flags = f
			prev = cur
		}
	}
	return out, nil
}

// pctChange is (cur - prev) / prev. From a zero base it is +Inf or -Inf by
// the sign of cur, and undefined when cur is zero too.
func pctChange(prev, cur *float64) *float64 {
	if prev == nil || cur == nil {
		return nil
	}
	if *prev == 0 {
		if *cur == 0 {
			return nil
		}
		return model.Float(math.Inf(int(math.Copysign(1, *cur))))
	}
	return model.Float((*cur - *prev) / *prev)
}
