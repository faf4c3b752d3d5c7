package report

import "github.com/okian/loadmon/internal/domain/model"

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithRollingColumns sets the rolling columns carried by the daily table, in
// window order. By default the last one ranks the team report and the first
// one ranks the standup.
func WithRollingColumns(cols []string) Option {
	return func(r *Reporter) {
		if len(cols) > 0 {
			r.rolling = append([]string(nil), cols...)
		}
	}
}

// WithRankColumn overrides the column the team report is sorted by.
func WithRankColumn(col string) Option {
	return func(r *Reporter) {
		if col != "" {
			r.rankColumn = col
		}
	}
}

// WithStandupColumn overrides the column the standup's top list is sorted by.
func WithStandupColumn(col string) Option {
	return func(r *Reporter) {
		if col != "" {
			r.standupColumn = col
		}
	}
}

// WithLoadColumn sets the raw load column used by summaries and charts.
func WithLoadColumn(col string) Option {
	return func(r *Reporter) {
		if col != "" {
			r.loadColumn = col
		}
	}
}

// WithLookbackDays sets the snapshot chart span.
func WithLookbackDays(days int) Option {
	return func(r *Reporter) {
		if days > 0 {
			r.lookbackDays = days
		}
	}
}

func defaults(r *Reporter) {
	r.loadColumn = model.ColInternalLoad
	r.lookbackDays = 28
}
