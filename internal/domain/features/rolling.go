// Package features derives the engineered columns of the daily table:
// rolling training load per player and the composite readiness score.
package features

import (
	"fmt"

	"github.com/okian/loadmon/internal/domain/model"
)

// Default rolling configuration.
const (
	defaultLoadColumn = model.ColInternalLoad
	defaultMinPeriods = 1
)

// DefaultWindows are the acute and chronic windows, in rows.
var DefaultWindows = []int{7, 28}

// RollingLoadEngine computes trailing-window sums of a load column per
// player. Windows count the player's rows, not calendar days.
type RollingLoadEngine struct {
	loadColumn string
	windows    []int
	minPeriods int
}

// NewRollingLoadEngine creates an engine from options and validates it:
// every window must be positive and no smaller than the minimum periods.
func NewRollingLoadEngine(opts ...RollingOption) (*RollingLoadEngine, error) {
	e := &RollingLoadEngine{
		loadColumn: defaultLoadColumn,
		windows:    append([]int(nil), DefaultWindows...),
		minPeriods: defaultMinPeriods,
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, ok := (model.SessionRecord{}).Value(e.loadColumn); !ok {
		return nil, fmt.Errorf("load column %q: %w", e.loadColumn, ErrUnknownColumn)
	}
	if e.minPeriods < 1 {
		return nil, fmt.Errorf("min periods %d must be >= 1: %w", e.minPeriods, ErrInvalidWindow)
	}
	for _, w := range e.windows {
		if w < 1 {
			return nil, fmt.Errorf("window %d must be >= 1: %w", w, ErrInvalidWindow)
		}
		if e.minPeriods > w {
			return nil, fmt.Errorf("min periods %d exceeds window %d: %w", e.minPeriods, w, ErrInvalidWindow)
		}
	}
	return e, nil
}

// ColumnName returns the output column for window w, e.g. internal_load_7d.
func (e *RollingLoadEngine) ColumnName(w int) string {
	return fmt.Sprintf("%s_%dd", e.loadColumn, w)
}

// Columns returns the output column names in window order.
func (e *RollingLoadEngine) Columns() []string {
	names := make([]string, len(e.windows))
	for i, w := range e.windows {
		names[i] = e.ColumnName(w)
	}
	return names
}

// Apply returns sessions sorted by (player_id, date) with one rolling
// column per window. For each row the window covers that player's most
// recent w rows up to and including the row itself; missing loads are
// skipped and do not count toward the minimum periods.
func (e *RollingLoadEngine) Apply(sessions []model.SessionRecord) []model.FeaturedSession {
	sorted := model.SortSessions(sessions)
	out := make([]model.FeaturedSession, len(sorted))
	for i, s := range sorted {
		out[i] = model.FeaturedSession{SessionRecord: s, Rolling: make([]model.Metric, len(e.windows))}
		for k := range e.windows {
			out[i].Rolling[k].Name = e.ColumnName(e.windows[k])
		}
	}

	groups := model.Partition(len(sorted), func(i int) string { return sorted[i].PlayerID })
	for _, idx := range groups {
		loads := make([]*float64, len(idx))
		for j, i := range idx {
			loads[j], _ = sorted[i].Value(e.loadColumn)
		}
		for k, w := range e.windows {
			sums := trailingSums(loads, w, e.minPeriods)
			for j, i := range idx {
				out[i].Rolling[k].Value = sums[j]
			}
		}
	}
	return out
}

// trailingSums sums each row's window of the last w entries from scratch, so
// no rounding residue or infinity carries over from rows that have left it.
func trailingSums(loads []*float64, w, minPeriods int) []*float64 {
	out := make([]*float64, len(loads))
	for j := range loads {
		var sum float64
		var obs int
		for _, v := range loads[max(0, j-w+1) : j+1] {
			if v != nil {
				sum += *v
				obs++
			}
		}
		if obs >= minPeriods {
			out[j] = model.Float(sum)
		}
	}
	return out
}
