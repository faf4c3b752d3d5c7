package model

import (
	"sort"
	"time"
)

// Wellness column names.
const (
	ColSleepHours     = "sleep_hours"
	ColSleepQuality   = "sleep_quality"
	ColSoreness       = "soreness"
	ColFatigue        = "fatigue"
	ColStress         = "stress"
	ColMood           = "mood"
	ColReadinessRaw   = "readiness_raw"
	ColReadinessScore = "readiness_score"
)

// RawWellness is a wellness survey row as read from the source.
type RawWellness struct {
	Line         int
	Date         string
	PlayerID     string
	SleepHours   string
	SleepQuality string
	Soreness     string
	Fatigue      string
	Stress       string
	Mood         string
}

// WellnessRecord is one normalized wellness survey for a player on a day.
type WellnessRecord struct {
	Line         int       `csv:"-"`
	Date         time.Time `csv:"date"`
	PlayerID     string    `csv:"player_id"`
	SleepHours   *float64  `csv:"sleep_hours" validate:"omitempty,gte=0,lte=24"`
	SleepQuality *float64  `csv:"sleep_quality" validate:"omitempty,gte=1,lte=5"`
	Soreness     *float64  `csv:"soreness" validate:"omitempty,gte=1,lte=10"`
	Fatigue      *float64  `csv:"fatigue" validate:"omitempty,gte=1,lte=10"`
	Stress       *float64  `csv:"stress" validate:"omitempty,gte=1,lte=10"`
	Mood         *float64  `csv:"mood" validate:"omitempty,gte=1,lte=10"`
}

// WellnessColumns lists the numeric wellness survey columns.
var WellnessColumns = []string{
	ColSleepHours, ColSleepQuality, ColSoreness, ColFatigue, ColStress, ColMood,
}

// Value returns the named numeric column. ok is false for unknown names.
func (w WellnessRecord) Value(column string) (v *float64, ok bool) {
	switch column {
	case ColSleepHours:
		return w.SleepHours, true
	case ColSleepQuality:
		return w.SleepQuality, true
	case ColSoreness:
		return w.Soreness, true
	case ColFatigue:
		return w.Fatigue, true
	case ColStress:
		return w.Stress, true
	case ColMood:
		return w.Mood, true
	}
	return nil, false
}

// Field returns a pointer to the named column slot so that fill passes can
// replace values in a copied record.
func (w *WellnessRecord) Field(column string) **float64 {
	switch column {
	case ColSleepHours:
		return &w.SleepHours
	case ColSleepQuality:
		return &w.SleepQuality
	case ColSoreness:
		return &w.Soreness
	case ColFatigue:
		return &w.Fatigue
	case ColStress:
		return &w.Stress
	case ColMood:
		return &w.Mood
	}
	return nil
}

// FeaturedWellness is a wellness record with readiness attached.
type FeaturedWellness struct {
	WellnessRecord
	ReadinessRaw   *float64
	ReadinessScore *float64
}

// Value resolves survey columns and readiness columns.
func (w FeaturedWellness) Value(column string) (*float64, bool) {
	switch column {
	case ColReadinessRaw:
		return w.ReadinessRaw, true
	case ColReadinessScore:
		return w.ReadinessScore, true
	}
	return w.WellnessRecord.Value(column)
}

// SortWellness returns a copy of wellness stable-sorted by (player_id, date).
func SortWellness(in []WellnessRecord) []WellnessRecord {
	out := make([]WellnessRecord, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return lessPlayerDate(out[i].PlayerID, out[i].Date, out[j].PlayerID, out[j].Date)
	})
	return out
}
