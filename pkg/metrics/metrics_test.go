package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given an isolated registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithStageBuckets(1, 10),
				WithRegistry(registry),
			)
			m.dailyRows.Set(4)

			Convey("Then collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_daily_rows")
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording ingestion and flags", func() {
			before := testutil.ToFloat64(globalManager.rowsIngested.WithLabelValues("sessions"))
			RecordRowsIngested("sessions", 12)
			RecordFlagsRaised("load_spike", 2)

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.rowsIngested.WithLabelValues("sessions")), ShouldEqual, before+12)
				So(testutil.ToFloat64(globalManager.flagsRaised.WithLabelValues("load_spike")), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When recording gauges and runs", func() {
			at := time.Unix(1700000000, 0)
			UpdateDailyRows(30)
			UpdatePlayers(3)
			RecordRun(true, at)
			RecordRun(false, at.Add(time.Hour))

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.dailyRows), ShouldEqual, 30)
				So(testutil.ToFloat64(globalManager.players), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.lastSuccessRun), ShouldEqual, 1700000000)
			})
		})

		Convey("When recording stage outcomes", func() {
			So(func() {
				RecordStageDuration("merge", 3*time.Millisecond)
				RecordStageError("merge", "integrity")
				RecordReportFile("daily")
			}, ShouldNotPanic)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		UpdateDailyRows(7)
		dir := t.TempDir()

		Convey("When writing the textfile", func() {
			path := filepath.Join(dir, "loadmon.prom")
			err := WriteTextfile(path)

			Convey("Then the exposition format is on disk", func() {
				So(err, ShouldBeNil)
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(strings.Contains(string(raw), "loadmon_pipeline_daily_rows 7"), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "loadmon.prom"))

			Convey("Then the error is wrapped", func() {
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
			})
		})
	})
}
