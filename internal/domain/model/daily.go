package model

import (
	"sort"
	"time"
)

// Flag column names.
const (
	ColLoadPctChange    = "load_pct_change"
	ColFlagLoadSpike    = "flag_load_spike"
	ColFlagLowReadiness = "flag_low_readiness"
)

// Flags holds the anomaly indicators of a daily row.
type Flags struct {
	LoadPctChange *float64
	LoadSpike     bool
	LowReadiness  bool
}

// DailyRow is one merged (player, day) row of the daily table.
//
// Player identity is empty when the player is unknown to the reference
// table and unknown players are tolerated. HasWellness reports whether a
// survey matched the session. Flags is nil until the flag engine has run.
type DailyRow struct {
	Date        time.Time
	PlayerID    string
	PlayerName  string
	Position    string
	Status      string
	SessionType string

	Minutes      *float64
	SRPE         *float64
	ExternalLoad *float64
	TotalAccels  *float64
	JumpCount    *float64
	AvgHR        *float64
	InternalLoad *float64
	Rolling      []Metric

	HasWellness    bool
	SleepHours     *float64
	SleepQuality   *float64
	Soreness       *float64
	Fatigue        *float64
	Stress         *float64
	Mood           *float64
	ReadinessRaw   *float64
	ReadinessScore *float64

	Flags *Flags
}

// Value resolves any numeric column of the daily row by name.
func (r DailyRow) Value(column string) (*float64, bool) {
	switch column {
	case ColMinutes:
		return r.Minutes, true
	case ColSRPE:
		return r.SRPE, true
	case ColExternalLoad:
		return r.ExternalLoad, true
	case ColTotalAccels:
		return r.TotalAccels, true
	case ColJumpCount:
		return r.JumpCount, true
	case ColAvgHR:
		return r.AvgHR, true
	case ColInternalLoad:
		return r.InternalLoad, true
	case ColSleepHours:
		return r.SleepHours, true
	case ColSleepQuality:
		return r.SleepQuality, true
	case ColSoreness:
		return r.Soreness, true
	case ColFatigue:
		return r.Fatigue, true
	case ColStress:
		return r.Stress, true
	case ColMood:
		return r.Mood, true
	case ColReadinessRaw:
		return r.ReadinessRaw, true
	case ColReadinessScore:
		return r.ReadinessScore, true
	case ColLoadPctChange:
		if r.Flags == nil {
			return nil, false
		}
		return r.Flags.LoadPctChange, true
	}
	for _, m := range r.Rolling {
		if m.Name == column {
			return m.Value, true
		}
	}
	return nil, false
}

// LoadSpike reports the load spike flag, false when flags were not computed.
func (r DailyRow) LoadSpike() bool { return r.Flags != nil && r.Flags.LoadSpike }

// LowReadiness reports the low readiness flag, false when flags were not computed.
func (r DailyRow) LowReadiness() bool { return r.Flags != nil && r.Flags.LowReadiness }

// Clone returns a copy that shares no slices with r.
func (r DailyRow) Clone() DailyRow {
	out := r
	if r.Rolling != nil {
		out.Rolling = make([]Metric, len(r.Rolling))
		copy(out.Rolling, r.Rolling)
	}
	if r.Flags != nil {
		f := *r.Flags
		out.Flags = &f
	}
	return out
}

// RollingColumns returns the rolling column names of the first row, which
// all rows of one table share.
func RollingColumns(rows []DailyRow) []string {
	if len(rows) == 0 {
		return nil
	}
	names := make([]string, len(rows[0].Rolling))
	for i, m := range rows[0].Rolling {
		names[i] = m.Name
	}
	return names
}

// SortDaily returns a clone of rows stable-sorted by (player_id, date).
func SortDaily(in []DailyRow) []DailyRow {
	out := make([]DailyRow, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessPlayerDate(out[i].PlayerID, out[i].Date, out[j].PlayerID, out[j].Date)
	})
	return out
}
