package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	service "github.com/okian/loadmon/internal/app"
	"github.com/okian/loadmon/internal/adapters/source"
	"github.com/okian/loadmon/internal/config"
	"github.com/okian/loadmon/internal/domain/merge"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/internal/domain/preprocess"
	"github.com/okian/loadmon/internal/domain/validate"
	"github.com/okian/loadmon/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func tables() model.Tables {
	return model.Tables{
		Players: []model.Player{
			{PlayerID: "P1", PlayerName: "Ana", Position: "GK", Status: "active"},
			{PlayerID: "P2", PlayerName: "Bo", Position: "FW", Status: "active"},
		},
		Sessions: []model.RawSession{
			{Line: 2, Date: "2024-03-01", PlayerID: "P1", SessionType: "training", Minutes: "60", SRPE: "5", ExternalLoad: "300", TotalAccels: "20", JumpCount: "5"},
			{Line: 3, Date: "2024-03-02", PlayerID: "P1", SessionType: "training", Minutes: "60", SRPE: "8", ExternalLoad: "320", TotalAccels: "22", JumpCount: "6"},
			{Line: 4, Date: "2024-03-01", PlayerID: "P2", SessionType: "training", Minutes: "45", SRPE: "4", ExternalLoad: "200", TotalAccels: "12", JumpCount: "3"},
		},
		Wellness: []model.RawWellness{
			{Line: 2, Date: "2024-03-01", PlayerID: "P1", SleepHours: "8", SleepQuality: "4", Soreness: "2", Fatigue: "3", Stress: "2", Mood: "7"},
			{Line: 3, Date: "2024-03-02", PlayerID: "P1", SleepHours: "6", SleepQuality: "2", Soreness: "6", Fatigue: "7", Stress: "5", Mood: "4"},
		},
	}
}

func TestService_New(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		svc, err := service.New(config.New())

		Convey("Then the service is built", func() {
			So(err, ShouldBeNil)
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a configuration with an unknown fill mode", t, func() {
		cfg := config.New()
		cfg.FillMode = "interpolate"
		_, err := service.New(cfg)

		Convey("Then it is rejected as invalid config", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			So(errors.Is(err, model.ErrUnsupportedOption), ShouldBeTrue)
		})
	})
}

func TestService_Run(t *testing.T) {
	Convey("Given a service with a 7 row window", t, func() {
		cfg := config.New()
		cfg.Windows = []int{7}
		svc, err := service.New(cfg)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When running over two players", func() {
			res, err := svc.Run(ctx, tables())
			So(err, ShouldBeNil)

			Convey("Then the daily table has one row per session in key order", func() {
				So(res.RunID, ShouldNotBeEmpty)
				So(res.RollingColumns, ShouldResemble, []string{"internal_load_7d"})
				So(len(res.Daily), ShouldEqual, 3)
				So(res.Daily[0].PlayerID, ShouldEqual, "P1")
				So(res.Daily[2].PlayerID, ShouldEqual, "P2")
			})

			Convey("Then rolling load accumulates within the player", func() {
				v, _ := res.Daily[0].Value("internal_load_7d")
				So(*v, ShouldEqual, 300)
				v, _ = res.Daily[1].Value("internal_load_7d")
				So(*v, ShouldEqual, 780)
				v, _ = res.Daily[2].Value("internal_load_7d")
				So(*v, ShouldEqual, 180)
			})

			Convey("Then the second P1 day is a load spike", func() {
				So(res.Daily[0].LoadSpike(), ShouldBeFalse)
				So(res.Daily[1].LoadSpike(), ShouldBeTrue)
				So(*res.Daily[1].Flags.LoadPctChange, ShouldEqual, 1.6)
			})

			Convey("Then wellness is joined where present", func() {
				So(res.Daily[0].HasWellness, ShouldBeTrue)
				So(res.Daily[2].HasWellness, ShouldBeFalse)
				So(res.Daily[2].LowReadiness(), ShouldBeFalse)
			})

			Convey("Then the store indexes the result", func() {
				So(res.Store().Players(ctx), ShouldResemble, []string{"P1", "P2"})
			})
		})

		Convey("When a wellness key is duplicated", func() {
			in := tables()
			in.Wellness = append(in.Wellness, in.Wellness[0])
			in.Wellness[2].Line = 4
			_, err := svc.Run(ctx, in)

			Convey("Then the merge fails with an integrity error", func() {
				So(errors.Is(err, merge.ErrMergeIntegrity), ShouldBeTrue)
				So(err.Error(), ShouldStartWith, service.StageMerge+":")
				So(service.ErrorKind(err), ShouldEqual, "integrity")
			})
		})

		Convey("When a session date cannot be parsed", func() {
			in := tables()
			in.Sessions[1].Date = "yesterday"
			_, err := svc.Run(ctx, in)
			So(errors.Is(err, preprocess.ErrDateParse), ShouldBeTrue)
			So(service.ErrorKind(err), ShouldEqual, "date_parse")
		})

		Convey("When a value is out of range", func() {
			in := tables()
			in.Sessions[0].SRPE = "11"
			_, err := svc.Run(ctx, in)
			So(errors.Is(err, validate.ErrRange), ShouldBeTrue)
			So(service.ErrorKind(err), ShouldEqual, "range")
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Run(cctx, tables())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(service.ErrorKind(err), ShouldEqual, "canceled")
		})
	})
}

func TestErrorKind(t *testing.T) {
	Convey("Given errors from each layer", t, func() {
		So(service.ErrorKind(&source.SchemaError{Table: "players", Missing: []string{"status"}}), ShouldEqual, "schema")
		So(service.ErrorKind(fmt.Errorf("wrap: %w", model.ErrUnsupportedOption)), ShouldEqual, "unsupported_option")
		So(service.ErrorKind(errors.New("disk full")), ShouldEqual, "io")
	})
}
