package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage duration buckets in milliseconds; batch stages run from sub-ms to seconds.
var defaultBuckets = []float64{0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// Manager owns the pipeline metrics.
type Manager struct {
	namespace    string
	subsystem    string
	stageBuckets []float64
	registry     prometheus.Registerer

	// Ingestion
	rowsIngested *prometheus.CounterVec

	// Stages
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec

	// Output
	flagsRaised *prometheus.CounterVec
	dailyRows   prometheus.Gauge
	players     prometheus.Gauge
	reportFiles *prometheus.CounterVec

	// Runs
	runs           *prometheus.CounterVec
	lastSuccessRun prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "loadmon",
		subsystem:    "pipeline",
		stageBuckets: defaultBuckets,
		registry:     prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsIngested = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_ingested_total",
		Help:      "Rows read from each source table",
	}, []string{"table"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_milliseconds",
		Help:      "Duration of each pipeline stage in milliseconds",
		Buckets:   m.stageBuckets,
	}, []string{"stage"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_errors_total",
		Help:      "Pipeline stage failures by stage and error kind",
	}, []string{"stage", "kind"})

	m.flagsRaised = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flags_raised_total",
		Help:      "Anomaly flags raised by flag name",
	}, []string{"flag"})

	m.dailyRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "daily_rows",
		Help:      "Rows in the most recent daily table",
	})

	m.players = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players",
		Help:      "Distinct players in the most recent daily table",
	})

	m.reportFiles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_files_written_total",
		Help:      "Report and export files written by kind",
	}, []string{"kind"})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Pipeline runs by outcome",
	}, []string{"status"})

	m.lastSuccessRun = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful pipeline run",
	})
}

// RecordRowsIngested adds n rows read from table.
func RecordRowsIngested(table string, n int) {
	globalManager.rowsIngested.WithLabelValues(table).Add(float64(n))
}

// RecordStageDuration observes how long stage took.
func RecordStageDuration(stage string, d time.Duration) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(float64(d) / float64(time.Millisecond))
}

// RecordStageError counts a failure of stage with the given error kind.
func RecordStageError(stage, kind string) {
	globalManager.stageErrors.WithLabelValues(stage, kind).Inc()
}

// RecordFlagsRaised adds n raised flags named flag.
func RecordFlagsRaised(flag string, n int) {
	globalManager.flagsRaised.WithLabelValues(flag).Add(float64(n))
}

// UpdateDailyRows sets the daily table row count.
func UpdateDailyRows(n int) {
	globalManager.dailyRows.Set(float64(n))
}

// UpdatePlayers sets the distinct player count.
func UpdatePlayers(n int) {
	globalManager.players.Set(float64(n))
}

// RecordReportFile counts a written file of kind (daily, team_report, snapshot, bi_csv, bi_xlsx).
func RecordReportFile(kind string) {
	globalManager.reportFiles.WithLabelValues(kind).Inc()
}

// RecordRun counts a finished run and stamps the success time when ok.
func RecordRun(ok bool, at time.Time) {
	if !ok {
		globalManager.runs.WithLabelValues("failure").Inc()
		return
	}
	globalManager.runs.WithLabelValues("success").Inc()
	globalManager.lastSuccessRun.Set(float64(at.Unix()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile persists the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteTextfile, path, err)
	}
	return nil
}
