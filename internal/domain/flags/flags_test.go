package flags_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/loadmon/internal/domain/flags"
	"github.com/okian/loadmon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func row(id string, d int, load, readiness *float64) model.DailyRow {
	return model.DailyRow{
		PlayerID:       id,
		Date:           time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC),
		Rolling:        []model.Metric{{Name: "internal_load_7d", Value: load}},
		ReadinessScore: readiness,
	}
}

func TestEngine(t *testing.T) {
	Convey("Given a flag engine with default thresholds", t, func() {
		e := flags.New()
		in := []model.DailyRow{
			row("P1", 1, model.Float(100), model.Float(0.2)),
			row("P1", 2, model.Float(126), model.Float(-1.5)),
			row("P1", 3, model.Float(150), model.Float(-1)),
			row("P1", 4, nil, nil),
			row("P1", 5, model.Float(400), nil),
			row("P2", 1, model.Float(10), model.Float(-3)),
		}

		Convey("When flags are applied", func() {
			out, err := e.Apply(in)
			So(err, ShouldBeNil)

			Convey("Then the first row of each player has no change and no spike", func() {
				So(out[0].Flags.LoadPctChange, ShouldBeNil)
				So(out[0].LoadSpike(), ShouldBeFalse)
				So(out[5].PlayerID, ShouldEqual, "P2")
				So(out[5].Flags.LoadPctChange, ShouldBeNil)
				So(out[5].LoadSpike(), ShouldBeFalse)
			})

			Convey("Then a change strictly above 25 percent spikes", func() {
				So(*out[1].Flags.LoadPctChange, ShouldAlmostEqual, 0.26, 1e-12)
				So(out[1].LoadSpike(), ShouldBeTrue)
				So(out[2].LoadSpike(), ShouldBeFalse)
			})

			Convey("Then missing neighbours leave the change undefined and the flag false", func() {
				So(out[3].Flags.LoadPctChange, ShouldBeNil)
				So(out[4].Flags.LoadPctChange, ShouldBeNil)
				So(out[4].LoadSpike(), ShouldBeFalse)
			})

			Convey("Then low readiness is strictly below the threshold", func() {
				So(out[1].LowReadiness(), ShouldBeTrue)
				So(out[2].LowReadiness(), ShouldBeFalse)
				So(out[3].LowReadiness(), ShouldBeFalse)
				So(out[5].LowReadiness(), ShouldBeTrue)
			})

			Convey("Then the input rows are not modified", func() {
				So(in[1].Flags, ShouldBeNil)
			})
		})

		Convey("When the load rises from zero", func() {
			out, err := e.Apply([]model.DailyRow{
				row("P1", 1, model.Float(0), nil),
				row("P1", 2, model.Float(600), nil),
			})
			So(err, ShouldBeNil)

			Convey("Then the change is infinite and flags a spike", func() {
				So(math.IsInf(*out[1].Flags.LoadPctChange, 1), ShouldBeTrue)
				So(out[1].LoadSpike(), ShouldBeTrue)
			})
		})

		Convey("When the load stays at zero", func() {
			out, err := e.Apply([]model.DailyRow{
				row("P1", 1, model.Float(0), nil),
				row("P1", 2, model.Float(0), nil),
			})
			So(err, ShouldBeNil)
			So(out[1].Flags.LoadPctChange, ShouldBeNil)
			So(out[1].LoadSpike(), ShouldBeFalse)
		})
	})

	Convey("Given custom thresholds and columns", t, func() {
		e := flags.New(
			flags.WithLoadColumn(model.ColInternalLoad),
			flags.WithLoadSpikeThreshold(1),
			flags.WithReadinessColumn(model.ColReadinessRaw),
			flags.WithLowReadinessThreshold(0),
		)
		a := row("P1", 1, nil, nil)
		a.InternalLoad, a.ReadinessRaw = model.Float(100), model.Float(1)
		b := row("P1", 2, nil, nil)
		b.InternalLoad, b.ReadinessRaw = model.Float(250), model.Float(-1)

		Convey("Then the configured columns drive the flags", func() {
			out, err := e.Apply([]model.DailyRow{a, b})
			So(err, ShouldBeNil)
			So(*out[1].Flags.LoadPctChange, ShouldEqual, 1.5)
			So(out[1].LoadSpike(), ShouldBeTrue)
			So(out[0].LowReadiness(), ShouldBeFalse)
			So(out[1].LowReadiness(), ShouldBeTrue)
		})
	})

	Convey("Given a column the table does not have", t, func() {
		e := flags.New(flags.WithLoadColumn("internal_load_14d"))

		Convey("Then Apply fails", func() {
			_, err := e.Apply([]model.DailyRow{row("P1", 1, model.Float(1), nil)})
			So(errors.Is(err, model.ErrUnsupportedOption), ShouldBeTrue)
		})
	})
}
