package merge_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/loadmon/internal/domain/merge"
	"github.com/okian/loadmon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(n int) time.Time {
	return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
}

func fs(id string, d int, load float64) model.FeaturedSession {
	return model.FeaturedSession{
		SessionRecord: model.SessionRecord{PlayerID: id, Date: day(d), SessionType: "training", InternalLoad: model.Float(load)},
		Rolling:       []model.Metric{{Name: "internal_load_7d", Value: model.Float(load)}},
	}
}

func fw(id string, d int, score float64) model.FeaturedWellness {
	return model.FeaturedWellness{
		WellnessRecord: model.WellnessRecord{PlayerID: id, Date: day(d), Mood: model.Float(7)},
		ReadinessRaw:   model.Float(score * 2),
		ReadinessScore: model.Float(score),
	}
}

var roster = []model.Player{
	{PlayerID: "P1", PlayerName: "Ana", Position: "GK", Status: "active"},
	{PlayerID: "P2", PlayerName: "Bo", Position: "FW", Status: "injured"},
}

func TestMerge(t *testing.T) {
	Convey("Given sessions, wellness and a roster", t, func() {
		sessions := []model.FeaturedSession{fs("P2", 1, 200), fs("P1", 2, 480), fs("P1", 1, 300)}
		wellness := []model.FeaturedWellness{fw("P1", 1, -0.5), fw("P1", 5, 1), fw("P2", 1, 0)}
		m := merge.New()

		Convey("When merging", func() {
			rows, err := m.Merge(roster, sessions, wellness)

			Convey("Then every session is kept and sorted by player and date", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].PlayerID, ShouldEqual, "P1")
				So(rows[0].Date, ShouldEqual, day(1))
				So(rows[1].Date, ShouldEqual, day(2))
				So(rows[2].PlayerID, ShouldEqual, "P2")
			})

			Convey("Then wellness attaches by player and date only", func() {
				So(rows[0].HasWellness, ShouldBeTrue)
				So(*rows[0].ReadinessScore, ShouldEqual, -0.5)
				So(rows[1].HasWellness, ShouldBeFalse)
				So(rows[1].ReadinessScore, ShouldBeNil)
				So(rows[1].Mood, ShouldBeNil)
			})

			Convey("Then player identity is attached", func() {
				So(rows[0].PlayerName, ShouldEqual, "Ana")
				So(rows[2].Status, ShouldEqual, "injured")
				So(*rows[1].Rolling[0].Value, ShouldEqual, 480)
			})

			Convey("Then merging again yields an identical table", func() {
				again, err := m.Merge(roster, sessions, wellness)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, rows)
			})
		})

		Convey("When two wellness rows share a player and date", func() {
			wellness = append(wellness, fw("P1", 1, 2))
			rows, err := m.Merge(roster, sessions, wellness)

			Convey("Then the merge fails", func() {
				So(rows, ShouldBeNil)
				So(errors.Is(err, merge.ErrMergeIntegrity), ShouldBeTrue)
				var ie *merge.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Table, ShouldEqual, "wellness")
				So(err.Error(), ShouldContainSubstring, "player_id=P1 date=2024-03-01")
			})
		})

		Convey("When the roster repeats a player id", func() {
			_, err := m.Merge(append(roster, model.Player{PlayerID: "P1"}), sessions, wellness)
			So(errors.Is(err, merge.ErrMergeIntegrity), ShouldBeTrue)
		})

		Convey("When two sessions share a player and date", func() {
			_, err := m.Merge(roster, append(sessions, fs("P2", 1, 10)), wellness)
			var ie *merge.IntegrityError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Table, ShouldEqual, "sessions")
		})

		Convey("When a session references an unknown player", func() {
			sessions = append(sessions, fs("P9", 1, 50))

			Convey("Then it fails by default", func() {
				_, err := m.Merge(roster, sessions, wellness)
				So(errors.Is(err, merge.ErrMergeIntegrity), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "unknown player")
			})

			Convey("Then it keeps an empty identity when tolerated", func() {
				rows, err := merge.New(merge.WithRequireKnownPlayers(false)).Merge(roster, sessions, wellness)
				So(err, ShouldBeNil)
				So(rows[3].PlayerID, ShouldEqual, "P9")
				So(rows[3].PlayerName, ShouldBeEmpty)
			})
		})
	})
}
