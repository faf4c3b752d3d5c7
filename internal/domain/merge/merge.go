// Package merge joins players, featurized sessions and featurized wellness
// into the daily per-player table.
package merge

import (
	"github.com/okian/loadmon/internal/domain/model"
)

const (
	reasonDuplicate = "duplicate key"
	reasonUnknown   = "unknown player"
)

// Option applies a configuration option to the Merger.
type Option func(*Merger)

// WithRequireKnownPlayers makes a session whose player_id is absent from
// the reference table an integrity error. It is on by default; when off the
// row keeps an empty identity.
func WithRequireKnownPlayers(on bool) Option {
	return func(m *Merger) {
		m.requireKnownPlayers = on
	}
}

// Merger builds DailyRows. It holds no state between calls.
type Merger struct {
	requireKnownPlayers bool
}

// New creates a Merger.
func New(opts ...Option) *Merger {
	m := &Merger{requireKnownPlayers: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge left-joins wellness onto sessions by (player_id, date), then
// left-joins player identity by player_id, and returns rows sorted by
// (player_id, date). Player ids, wellness keys and session keys must each
// be unique.
func (m *Merger) Merge(players []model.Player, sessions []model.FeaturedSession, wellness []model.FeaturedWellness) ([]model.DailyRow, error) {
	roster := make(map[string]int, len(players))
	for i, p := range players {
		if _, dup := roster[p.PlayerID]; dup {
			return nil, &IntegrityError{Table: "players", Key: p.PlayerID, Reason: reasonDuplicate}
		}
		roster[p.PlayerID] = i
	}

	surveys := make(map[model.Key]int, len(wellness))
	for i, w := range wellness {
		k := model.NewKey(w.PlayerID, w.Date)
		if _, dup := surveys[k]; dup {
			return nil, &IntegrityError{Table: "wellness", Key: keyString(k), Reason: reasonDuplicate}
		}
		surveys[k] = i
	}

	seen := make(map[model.Key]struct{}, len(sessions))
	out := make([]model.DailyRow, 0, len(sessions))
	for _, s := range sessions {
		k := model.NewKey(s.PlayerID, s.Date)
		if _, dup := seen[k]; dup {
			return nil, &IntegrityError{Table: "sessions", Key: keyString(k), Reason: reasonDuplicate}
		}
		seen[k] = struct{}{}

		row := fromSession(s)
		if i, ok := surveys[k]; ok {
			withWellness(&row, wellness[i])
		}
		if i, ok := roster[s.PlayerID]; ok {
			p := players[i]
			row.PlayerName, row.Position, row.Status = p.PlayerName, p.Position, p.Status
		} else if m.requireKnownPlayers {
			return nil, &IntegrityError{Table: "players", Key: s.PlayerID, Reason: reasonUnknown}
		}
		out = append(out, row)
	}
	return model.SortDaily(out), nil
}

func keyString(k model.Key) string {
	return "player_id=" + k.PlayerID + " date=" + k.Date
}

func fromSession(s model.FeaturedSession) model.DailyRow {
	row := model.DailyRow{
		Date:         s.Date,
		PlayerID:     s.PlayerID,
		SessionType:  s.SessionType,
		Minutes:      s.Minutes,
		SRPE:         s.SRPE,
		ExternalLoad: s.ExternalLoad,
		TotalAccels:  s.TotalAccels,
		JumpCount:    s.JumpCount,
		AvgHR:        s.AvgHR,
		InternalLoad: s.InternalLoad,
	}
	if s.Rolling != nil {
		row.Rolling = make([]model.Metric, len(s.Rolling))
		copy(row.Rolling, s.Rolling)
	}
	return row
}

func withWellness(row *model.DailyRow, w model.FeaturedWellness) {
	row.HasWellness = true
	row.SleepHours = w.SleepHours
	row.SleepQuality = w.SleepQuality
	row.Soreness = w.Soreness
	row.Fatigue = w.Fatigue
	row.Stress = w.Stress
	row.Mood = w.Mood
	row.ReadinessRaw = w.ReadinessRaw
	row.ReadinessScore = w.ReadinessScore
}
