package synth_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/okian/loadmon/internal/adapters/source"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/internal/synth"
	"github.com/okian/loadmon/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a small config", t, func() {
		cfg := synth.Config{Players: 4, Days: 21, Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Seed: 7}

		Convey("When generating twice with the same seed", func() {
			a, err := synth.Generate(cfg)
			So(err, ShouldBeNil)
			b, err := synth.Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then the tables are identical", func() {
				So(a, ShouldResemble, b)
			})

			Convey("Then every player has ids and some rest days", func() {
				So(len(a.Players), ShouldEqual, 4)
				So(a.Players[0].PlayerID, ShouldEqual, "P001")
				So(len(a.Sessions), ShouldBeGreaterThan, 0)
				So(len(a.Sessions), ShouldBeLessThanOrEqualTo, 4*21)
				So(len(a.Wellness), ShouldBeLessThanOrEqualTo, len(a.Sessions))
				So(a.Sessions[0].Date, ShouldEqual, "2024-03-01")
			})

			Convey("Then every seventh day is a match", func() {
				for _, s := range a.Sessions {
					if s.Date == "2024-03-07" {
						So(s.SessionType, ShouldEqual, "match")
					}
				}
			})
		})

		Convey("When a different seed is used", func() {
			a, _ := synth.Generate(cfg)
			cfg.Seed = 8
			b, _ := synth.Generate(cfg)
			So(a, ShouldNotResemble, b)
		})
	})

	Convey("Given an invalid config", t, func() {
		_, err := synth.Generate(synth.Config{Players: 0, Days: 3})
		So(err, ShouldNotBeNil)
		_, err = synth.Generate(synth.Config{Players: 2, Days: 0})
		So(err, ShouldNotBeNil)
	})
}

func TestWrite(t *testing.T) {
	Convey("Given generated tables written to a directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		tables, err := synth.Generate(synth.DefaultConfig())
		So(err, ShouldBeNil)
		paths, err := synth.Write(ctx, dir, tables)
		So(err, ShouldBeNil)
		So(len(paths), ShouldEqual, 3)

		Convey("Then the source loader reads them back", func() {
			got, err := source.Load(ctx, dir)
			So(err, ShouldBeNil)
			So(len(got.Players), ShouldEqual, len(tables.Players))
			So(len(got.Sessions), ShouldEqual, len(tables.Sessions))
			So(len(got.Wellness), ShouldEqual, len(tables.Wellness))
			So(got.Sessions[0].AvgHR, ShouldEqual, tables.Sessions[0].AvgHR)
			So(got.Wellness[0].Mood, ShouldEqual, tables.Wellness[0].Mood)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := synth.Write(ctx, t.TempDir(), model.Tables{})
		So(err, ShouldEqual, context.Canceled)
	})
}
