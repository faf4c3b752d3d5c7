package model

import (
	"sort"
	"time"
)

// Session column names.
const (
	ColMinutes      = "minutes"
	ColSRPE         = "sRPE"
	ColExternalLoad = "external_load"
	ColTotalAccels  = "total_accels"
	ColJumpCount    = "jump_count"
	ColAvgHR        = "avg_hr"
	ColInternalLoad = "internal_load"
)

// RawSession is a session row as read from the source, before type coercion.
// Line is the 1-based data row number in the source file.
type RawSession struct {
	Line         int
	Date         string
	PlayerID     string
	SessionType  string
	Minutes      string
	SRPE         string
	ExternalLoad string
	TotalAccels  string
	JumpCount    string
	AvgHR        string
}

// SessionRecord is one normalized training session for a player on a day.
type SessionRecord struct {
	Line         int       `csv:"-"`
	Date         time.Time `csv:"date"`
	PlayerID     string    `csv:"player_id"`
	SessionType  string    `csv:"session_type"`
	Minutes      *float64  `csv:"minutes" validate:"omitempty,gte=0"`
	SRPE         *float64  `csv:"sRPE" validate:"omitempty,gte=0,lte=10"`
	ExternalLoad *float64  `csv:"external_load" validate:"omitempty,gte=0"`
	TotalAccels  *float64  `csv:"total_accels" validate:"omitempty,gte=0"`
	JumpCount    *float64  `csv:"jump_count" validate:"omitempty,gte=0"`
	AvgHR        *float64  `csv:"avg_hr"`
	InternalLoad *float64  `csv:"internal_load"`
}

// SessionColumns lists the numeric session columns in export order.
var SessionColumns = []string{
	ColMinutes, ColSRPE, ColExternalLoad, ColTotalAccels, ColJumpCount, ColAvgHR, ColInternalLoad,
}

// Value returns the named numeric column. ok is false for unknown names.
func (s SessionRecord) Value(column string) (v *float64, ok bool) {
	switch column {
	case ColMinutes:
		return s.Minutes, true
	case ColSRPE:
		return s.SRPE, true
	case ColExternalLoad:
		return s.ExternalLoad, true
	case ColTotalAccels:
		return s.TotalAccels, true
	case ColJumpCount:
		return s.JumpCount, true
	case ColAvgHR:
		return s.AvgHR, true
	case ColInternalLoad:
		return s.InternalLoad, true
	}
	return nil, false
}

// Metric is a named engineered value, e.g. internal_load_7d.
type Metric struct {
	Name  string
	Value *float64
}

// FeaturedSession is a session with its rolling load columns attached, in
// configured window order.
type FeaturedSession struct {
	SessionRecord
	Rolling []Metric
}

// Value resolves base session columns and rolling columns.
func (s FeaturedSession) Value(column string) (*float64, bool) {
	if v, ok := s.SessionRecord.Value(column); ok {
		return v, true
	}
	for _, m := range s.Rolling {
		if m.Name == column {
			return m.Value, true
		}
	}
	return nil, false
}

// SortSessions returns a copy of sessions stable-sorted by (player_id, date).
func SortSessions(in []SessionRecord) []SessionRecord {
	out := make([]SessionRecord, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return lessPlayerDate(out[i].PlayerID, out[i].Date, out[j].PlayerID, out[j].Date)
	})
	return out
}
