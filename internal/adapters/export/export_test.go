package export_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/loadmon/internal/adapters/export"
	"github.com/okian/loadmon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func dailyFixture() ([]model.Player, []model.DailyRow) {
	players := []model.Player{
		{PlayerID: "P2", PlayerName: "Bo", Position: "FW", Status: "active"},
		{PlayerID: "P1", PlayerName: "Ana", Position: "GK", Status: "active"},
	}
	rows := []model.DailyRow{
		{
			Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), PlayerID: "P1", SessionType: "training",
			Minutes: model.Float(60), SRPE: model.Float(8), InternalLoad: model.Float(480),
			Rolling:     []model.Metric{{Name: "internal_load_7d", Value: model.Float(780)}},
			HasWellness: true, Mood: model.Float(7), ReadinessRaw: model.Float(3),
			ReadinessScore: model.Float(-1.2345678901234567),
			Flags:          &model.Flags{LoadPctChange: model.Float(0.6), LoadSpike: true, LowReadiness: true},
		},
		{
			Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), PlayerID: "P1", SessionType: "training",
			Minutes: model.Float(60), SRPE: model.Float(5), InternalLoad: model.Float(300),
			Rolling: []model.Metric{{Name: "internal_load_7d", Value: model.Float(300)}},
			Flags:   &model.Flags{},
		},
		{
			Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), PlayerID: "P2", SessionType: "match",
			AvgHR:   model.Float(math.Inf(1)),
			Rolling: []model.Metric{{Name: "internal_load_7d", Value: nil}},
		},
	}
	return players, rows
}

func TestFormats(t *testing.T) {
	Convey("Given BI format names", t, func() {
		Convey("Then known names parse and duplicates collapse", func() {
			got, err := export.ParseFormats([]string{"CSV", "xlsx", "csv"})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []export.Format{export.FormatCSV, export.FormatXLSX})
		})

		Convey("Then unknown names are unsupported options", func() {
			_, err := export.ParseFormats([]string{"parquet"})
			So(errors.Is(err, model.ErrUnsupportedOption), ShouldBeTrue)
		})
	})
}

func TestTables(t *testing.T) {
	Convey("Given a daily table", t, func() {
		players, rows := dailyFixture()

		Convey("When building the calendar dimension", func() {
			cal := export.CalendarDim(rows)

			Convey("Then it has one row per distinct date with calendar parts", func() {
				So(len(cal.Rows), ShouldEqual, 2)
				So(cal.Rows[0], ShouldResemble, []any{"2024-03-01", 20240301, 2024, 3, "Mar", 9, 1, "Fri", false})
				So(cal.Rows[1][7], ShouldEqual, "Sat")
				So(cal.Rows[1][8], ShouldEqual, true)
			})
		})

		Convey("When building the player dimension", func() {
			dim := export.PlayersDim(players)
			So(dim.Rows[0][0], ShouldEqual, "P1")
			So(players[0].PlayerID, ShouldEqual, "P2")
		})

		Convey("When building the fact table", func() {
			fact := export.FactDaily(rows)
			col := func(name string) int {
				for i, c := range fact.Columns {
					if c == name {
						return i
					}
				}
				return -1
			}

			Convey("Then rows are keyed and sorted by player and date", func() {
				So(fact.Rows[0][col("date_key")], ShouldEqual, 20240301)
				So(fact.Rows[1][col("date_key")], ShouldEqual, 20240302)
				So(fact.Rows[2][col("player_id")], ShouldEqual, "P2")
				So(col("internal_load_7d"), ShouldBeGreaterThan, 0)
			})

			Convey("Then flags are explicit even when never computed", func() {
				So(fact.Rows[2][col("flag_load_spike")], ShouldEqual, false)
				So(fact.Rows[2][col("flag_low_readiness")], ShouldEqual, false)
				So(fact.Rows[1][col("flag_load_spike")], ShouldEqual, true)
				So(fact.Rows[2][col("load_pct_change")], ShouldBeNil)
			})
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a daily table exported to CSV", t, func() {
		_, rows := dailyFixture()
		var buf bytes.Buffer
		So(export.WriteCSV(&buf, export.FactDaily(rows)), ShouldBeNil)

		Convey("When reading the fact table back", func() {
			got, err := export.ReadFactCSV(&buf)

			Convey("Then the triples equal those of the source table", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, export.DailyTriples(rows))
			})
		})

		Convey("When a flag cell is blank", func() {
			bad := strings.Replace(buf.String(), ",true\n", ",\n", 1)
			_, err := export.ReadFactCSV(strings.NewReader(bad))

			Convey("Then reading fails", func() {
				So(errors.Is(err, export.ErrMalformedFact), ShouldBeTrue)
			})
		})
	})
}

func TestWriter(t *testing.T) {
	Convey("Given a writer for csv and xlsx", t, func() {
		dir := t.TempDir()
		players, rows := dailyFixture()
		w := export.NewWriter(dir, []export.Format{export.FormatCSV, export.FormatXLSX})

		Convey("When writing the BI tables", func() {
			files, err := w.Write(context.Background(), export.Build(players, rows))
			So(err, ShouldBeNil)

			Convey("Then three CSVs and one workbook exist", func() {
				So(len(files), ShouldEqual, 4)
				for _, name := range []string{"dim_players.csv", "dim_calendar.csv", "fact_daily.csv", "bi_tables.xlsx"} {
					_, err := os.Stat(filepath.Join(dir, "powerbi", name))
					So(err, ShouldBeNil)
				}
			})

			Convey("Then the workbook has one sheet per table", func() {
				wb, err := excelize.OpenFile(filepath.Join(dir, "powerbi", "bi_tables.xlsx"))
				So(err, ShouldBeNil)
				defer wb.Close()
				So(wb.GetSheetList(), ShouldResemble, []string{"dim_players", "dim_calendar", "fact_daily"})
				got, err := wb.GetRows("dim_players")
				So(err, ShouldBeNil)
				So(got[1][1], ShouldEqual, "Ana")
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := w.Write(ctx, export.Build(players, rows))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
