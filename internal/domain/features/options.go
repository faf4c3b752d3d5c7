package features

// RollingOption applies a configuration option to the RollingLoadEngine.
type RollingOption func(*RollingLoadEngine)

// WithLoadColumn sets the session column that is summed.
func WithLoadColumn(column string) RollingOption {
	return func(e *RollingLoadEngine) {
		if column != "" {
			e.loadColumn = column
		}
	}
}

// WithWindows sets the window sizes, in rows, in output column order.
func WithWindows(windows ...int) RollingOption {
	return func(e *RollingLoadEngine) {
		if len(windows) > 0 {
			e.windows = append([]int(nil), windows...)
		}
	}
}

// WithMinPeriods sets the minimum number of non-missing observations a
// window needs before it yields a value.
func WithMinPeriods(n int) RollingOption {
	return func(e *RollingLoadEngine) {
		e.minPeriods = n
	}
}

// ReadinessOption applies a configuration option to the ReadinessScorer.
type ReadinessOption func(*ReadinessScorer)

// WithMethod sets the scoring method.
func WithMethod(m Method) ReadinessOption {
	return func(s *ReadinessScorer) {
		s.method = m
	}
}

// WithStandardize toggles the within-player z-score.
func WithStandardize(on bool) ReadinessOption {
	return func(s *ReadinessScorer) {
		s.standardize = on
	}
}
