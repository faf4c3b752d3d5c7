package source_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/loadmon/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	playersCSV  = "\ufeffplayer_id,player_name,position,status,nationality\nP1,Ana,GK,active,PT\nP2,Bo,FW,injured,SE\n"
	sessionsCSV = "player_id,date,session_type,minutes,sRPE,external_load,total_accels,jump_count\n" +
		"P1,2024-03-01,training,60,5,350,25,9\n" +
		"P2,2024-03-01,match, 90 ,abc,,41,NaN\n"
	wellnessCSV = "date,player_id,sleep_hours,sleep_quality,soreness,fatigue,stress,mood,notes\n" +
		"2024-03-01,P1,8,4,2,3,2,7,\"slept well,\nno issues\"\n" +
		"2024-03-02,P1,,,,,,,\n"
)

func writeData(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	Convey("Given a data directory with all three tables", t, func() {
		dir := writeData(t, map[string]string{
			source.PlayersFile:  playersCSV,
			source.SessionsFile: sessionsCSV,
			source.WellnessFile: wellnessCSV,
		})

		Convey("When loading", func() {
			tables, err := source.Load(context.Background(), dir)
			So(err, ShouldBeNil)

			Convey("Then players are read despite the BOM and extra columns", func() {
				So(len(tables.Players), ShouldEqual, 2)
				So(tables.Players[0].PlayerID, ShouldEqual, "P1")
				So(tables.Players[1].Status, ShouldEqual, "injured")
			})

			Convey("Then session cells are kept as trimmed text with lines", func() {
				So(len(tables.Sessions), ShouldEqual, 2)
				s := tables.Sessions[1]
				So(s.Line, ShouldEqual, 3)
				So(s.Minutes, ShouldEqual, "90")
				So(s.SRPE, ShouldEqual, "abc")
				So(s.AvgHR, ShouldEqual, "")
			})

			Convey("Then line numbers follow the file across quoted newlines", func() {
				So(tables.Wellness[0].Line, ShouldEqual, 2)
				So(tables.Wellness[1].Line, ShouldEqual, 4)
				So(tables.Wellness[1].Mood, ShouldEqual, "")
			})
		})
	})

	Convey("Given a sessions table without required columns", t, func() {
		dir := writeData(t, map[string]string{
			source.PlayersFile:  playersCSV,
			source.SessionsFile: "date,player_id,minutes\n2024-03-01,P1,60\n",
			source.WellnessFile: wellnessCSV,
		})

		Convey("Then a SchemaError names the table and every missing column", func() {
			_, err := source.Load(context.Background(), dir)
			So(errors.Is(err, source.ErrSchema), ShouldBeTrue)
			var se *source.SchemaError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Table, ShouldEqual, "sessions")
			So(se.Missing, ShouldResemble, []string{"session_type", "sRPE", "external_load", "total_accels", "jump_count"})
		})
	})

	Convey("Given an empty players file", t, func() {
		_, err := source.ReadPlayers(strings.NewReader(""))
		So(errors.Is(err, source.ErrSchema), ShouldBeTrue)
	})

	Convey("Given a missing file", t, func() {
		dir := writeData(t, map[string]string{source.PlayersFile: playersCSV})
		_, err := source.Load(context.Background(), dir)
		So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
	})
}
