// Package service orchestrates a pipeline run: it loads the source tables,
// turns them into the flagged daily table and hands that table to the
// report and export adapters.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/loadmon/internal/adapters/export"
	"github.com/okian/loadmon/internal/adapters/report"
	"github.com/okian/loadmon/internal/adapters/repository"
	"github.com/okian/loadmon/internal/adapters/source"
	"github.com/okian/loadmon/internal/config"
	"github.com/okian/loadmon/internal/domain/features"
	"github.com/okian/loadmon/internal/domain/flags"
	"github.com/okian/loadmon/internal/domain/merge"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/internal/domain/preprocess"
	"github.com/okian/loadmon/internal/domain/validate"
	"github.com/okian/loadmon/pkg/logger"
	"github.com/okian/loadmon/pkg/metrics"
)

// Pipeline stage names, as logged and recorded in metrics.
const (
	StageLoad               = "load"
	StagePreprocessSessions = "preprocess_sessions"
	StagePreprocessWellness = "preprocess_wellness"
	StageValidate           = "validate"
	StageRolling            = "rolling_load"
	StageReadiness          = "readiness"
	StageMerge              = "merge"
	StageFlags              = "flags"
	StageReport             = "report"
	StageExport             = "export"
)

// Flag names recorded in metrics.
const (
	FlagLoadSpike    = "load_spike"
	FlagLowReadiness = "low_readiness"
)

// Result is the outcome of one pipeline run.
type Result struct {
	RunID          string
	Players        []model.Player
	Daily          []model.DailyRow
	RollingColumns []string

	once  sync.Once
	store *repository.MemoryStore
}

// Store indexes the daily table for the report collaborators.
func (r *Result) Store() repository.Store {
	r.once.Do(func() { r.store = repository.NewMemoryStore(r.Daily) })
	return r.store
}

// Service runs the pipeline with engines built from a validated Config.
type Service struct {
	cfg *config.Config

	fillMode  preprocess.FillMode
	ranges    *validate.RangeValidator
	rolling   *features.RollingLoadEngine
	readiness *features.ReadinessScorer
	merger    *merge.Merger
	flagger   *flags.Engine
	formats   []export.Format

	logger logger.Logger
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for the last-success timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New validates cfg and builds the pipeline engines from it.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	var err error
	if s.fillMode, err = preprocess.ParseFillMode(cfg.FillMode); err != nil {
		return nil, err
	}
	if s.formats, err = export.ParseFormats(cfg.BIFormats); err != nil {
		return nil, err
	}
	method, err := features.ParseMethod(cfg.ReadinessMethod)
	if err != nil {
		return nil, err
	}

	s.rolling, err = features.NewRollingLoadEngine(
		features.WithLoadColumn(cfg.LoadColumn),
		features.WithWindows(cfg.Windows...),
		features.WithMinPeriods(cfg.MinPeriods),
	)
	if err != nil {
		return nil, err
	}
	s.readiness, err = features.NewReadinessScorer(
		features.WithMethod(method),
		features.WithStandardize(cfg.Standardize),
	)
	if err != nil {
		return nil, err
	}

	s.ranges = validate.New()
	s.merger = merge.New(merge.WithRequireKnownPlayers(cfg.RequireKnownPlayers))
	s.flagger = flags.New(
		flags.WithLoadColumn(cfg.DerivedFlagLoadColumn()),
		flags.WithReadinessColumn(cfg.FlagReadinessColumn),
		flags.WithLoadSpikeThreshold(cfg.LoadSpikePct),
		flags.WithLowReadinessThreshold(cfg.LowReadinessThreshold),
	)
	return s, nil
}

// Load reads the source tables from the configured data directory.
func (s *Service) Load(ctx context.Context) (model.Tables, error) {
	var t model.Tables
	err := s.stage(ctx, s.logger, StageLoad, func() (int, error) {
		var err error
		t, err = source.Load(ctx, s.cfg.DataDir)
		return len(t.Sessions), err
	})
	if err != nil {
		return model.Tables{}, err
	}
	metrics.RecordRowsIngested("players", len(t.Players))
	metrics.RecordRowsIngested("sessions", len(t.Sessions))
	metrics.RecordRowsIngested("wellness", len(t.Wellness))
	return t, nil
}

// Process loads the source tables and runs the pipeline over them, recording
// the outcome of the run.
func (s *Service) Process(ctx context.Context) (*Result, error) {
	t, err := s.Load(ctx)
	if err != nil {
		metrics.RecordRun(false, s.now())
		return nil, err
	}
	res, err := s.Run(ctx, t)
	metrics.RecordRun(err == nil, s.now())
	return res, err
}

// Run turns raw tables into the flagged daily table. The context is checked
// between stages; no stage is interrupted midway.
func (s *Service) Run(ctx context.Context, t model.Tables) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Players: t.Players, RollingColumns: s.rolling.Columns()}
	log := s.logger.With(logger.String("run_id", res.RunID))
	start := time.Now()
	log.Info(ctx, "pipeline run started",
		logger.Int("players", len(t.Players)),
		logger.Int("sessions", len(t.Sessions)),
		logger.Int("wellness", len(t.Wellness)),
	)

	var (
		sessions []model.SessionRecord
		wellness []model.WellnessRecord
		featured []model.FeaturedSession
		scored   []model.FeaturedWellness
		daily    []model.DailyRow
	)
	stages := []struct {
		name string
		fn   func() (int, error)
	}{
		{StagePreprocessSessions, func() (n int, err error) {
			sessions, err = preprocess.Sessions(t.Sessions)
			return len(sessions), err
		}},
		{StagePreprocessWellness, func() (n int, err error) {
			wellness, err = preprocess.Wellness(t.Wellness, s.fillMode)
			return len(wellness), err
		}},
		{StageValidate, func() (int, error) {
			return len(sessions) + len(wellness), s.ranges.Validate(sessions, wellness)
		}},
		{StageRolling, func() (int, error) {
			featured = s.rolling.Apply(sessions)
			return len(featured), nil
		}},
		{StageReadiness, func() (int, error) {
			scored = s.readiness.Score(wellness)
			return len(scored), nil
		}},
		{StageMerge, func() (n int, err error) {
			daily, err = s.merger.Merge(t.Players, featured, scored)
			return len(daily), err
		}},
		{StageFlags, func() (n int, err error) {
			daily, err = s.flagger.Apply(daily)
			return len(daily), err
		}},
	}
	for _, st := range stages {
		if err := s.stage(ctx, log, st.name, st.fn); err != nil {
			log.Warn(ctx, "pipeline run aborted", logger.String("stage", st.name))
			return nil, err
		}
	}

	res.Daily = daily
	var spikes, lows int
	for _, row := range daily {
		if row.LoadSpike() {
			spikes++
		}
		if row.LowReadiness() {
			lows++
		}
	}
	metrics.RecordFlagsRaised(FlagLoadSpike, spikes)
	metrics.RecordFlagsRaised(FlagLowReadiness, lows)
	metrics.UpdateDailyRows(len(daily))
	metrics.UpdatePlayers(len(res.Store().Players(ctx)))

	log.Info(ctx, "pipeline run finished",
		logger.Int("daily_rows", len(daily)),
		logger.Int(FlagLoadSpike, spikes),
		logger.Int(FlagLowReadiness, lows),
		logger.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// stage times fn and records its outcome.
func (s *Service) stage(ctx context.Context, log logger.Logger, name string, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordStageError(name, ErrorKind(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	n, err := fn()
	elapsed := time.Since(start)
	metrics.RecordStageDuration(name, elapsed)
	if err != nil {
		metrics.RecordStageError(name, ErrorKind(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug(ctx, "stage finished",
		logger.String("stage", name),
		logger.Int("rows", n),
		logger.Duration("duration", elapsed),
	)
	return nil
}

// Reporter builds a report.Reporter over res.
func (s *Service) Reporter(res *Result) *report.Reporter {
	return report.New(res.Store(), s.cfg.OutDir,
		report.WithRollingColumns(res.RollingColumns),
		report.WithRankColumn(s.rolling.ColumnName(slices.Max(s.cfg.Windows))),
		report.WithStandupColumn(s.rolling.ColumnName(slices.Min(s.cfg.Windows))),
		report.WithLoadColumn(s.cfg.LoadColumn),
		report.WithLookbackDays(s.cfg.LookbackDays),
	)
}

// SnapshotDate resolves the configured snapshot date against res.
func (s *Service) SnapshotDate(ctx context.Context, res *Result) (time.Time, error) {
	var date time.Time
	if s.cfg.SnapshotDate != "" {
		d, err := time.Parse(model.DateLayout, s.cfg.SnapshotDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("snapshot date %q: %w", s.cfg.SnapshotDate, err)
		}
		date = d
	}
	return s.Reporter(res).SnapshotDate(ctx, date)
}

// WriteReports writes daily.csv, the team report and the player snapshots
// for the snapshot date.
func (s *Service) WriteReports(ctx context.Context, res *Result) ([]export.File, error) {
	var files []export.File
	err := s.stage(ctx, s.logger, StageReport, func() (int, error) {
		r := s.Reporter(res)
		date, err := s.SnapshotDate(ctx, res)
		if err != nil {
			return 0, err
		}

		path, err := r.WriteDaily(ctx)
		if err != nil {
			return 0, err
		}
		files = append(files, export.File{Kind: report.KindDaily, Path: path})

		if path, err = r.WriteTeamReport(ctx, date); err != nil {
			return 0, err
		}
		files = append(files, export.File{Kind: report.KindTeam, Path: path})

		ids := s.cfg.SnapshotPlayers
		if len(ids) == 0 {
			if ids, err = r.SnapshotPlayers(ctx, date); err != nil {
				return 0, err
			}
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			png, txt, err := r.WriteSnapshot(ctx, id, date)
			if err != nil {
				return 0, err
			}
			if png != "" {
				files = append(files, export.File{Kind: report.KindFigure, Path: png})
			}
			files = append(files, export.File{Kind: report.KindSummary, Path: txt})
		}
		return len(files), nil
	})
	s.recordFiles(ctx, files)
	return files, err
}

// Export writes the BI tables in the configured formats.
func (s *Service) Export(ctx context.Context, res *Result) ([]export.File, error) {
	var files []export.File
	err := s.stage(ctx, s.logger, StageExport, func() (n int, err error) {
		files, err = export.NewWriter(s.cfg.OutDir, s.formats).Write(ctx, export.Build(res.Players, res.Daily))
		return len(files), err
	})
	s.recordFiles(ctx, files)
	return files, err
}

// Standup prints the standup summary for the snapshot date to w.
func (s *Service) Standup(ctx context.Context, w io.Writer, res *Result) error {
	date, err := s.SnapshotDate(ctx, res)
	if err != nil {
		return err
	}
	return s.Reporter(res).Standup(ctx, w, date)
}

func (s *Service) recordFiles(ctx context.Context, files []export.File) {
	for _, f := range files {
		metrics.RecordReportFile(f.Kind)
		s.logger.Info(ctx, "output written", logger.String("kind", f.Kind), logger.String("path", f.Path))
	}
}

// ErrorKind classifies err for the stage_errors_total metric.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, source.ErrSchema):
		return "schema"
	case errors.Is(err, preprocess.ErrDateParse):
		return "date_parse"
	case errors.Is(err, validate.ErrRange):
		return "range"
	case errors.Is(err, merge.ErrMergeIntegrity):
		return "integrity"
	case errors.Is(err, model.ErrUnsupportedOption), errors.Is(err, features.ErrUnknownColumn):
		return "unsupported_option"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrEmpty):
		return "not_found"
	default:
		return "io"
	}
}
