// Package model contains the tables passed between pipeline stages.
//
// Missing numeric cells are nil *float64 values. Tables are plain slices of
// records; every stage returns a new slice and never writes through the
// pointers it received.
package model

import (
	"errors"
	"time"
)

// DateLayout is the canonical calendar-day format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ErrUnsupportedOption marks a value outside a closed option set (fill mode,
// scoring method, export format, column name).
var ErrUnsupportedOption = errors.New("unsupported option")

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// FormatDate formats a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key identifies one player on one calendar day.
type Key struct {
	PlayerID string
	Date     string
}

// NewKey builds the join key for a player and a date.
func NewKey(playerID string, date time.Time) Key {
	return Key{PlayerID: playerID, Date: FormatDate(date)}
}

// Partition groups row indices by player id, keeping rows in their original
// order within each group and groups in order of first appearance.
func Partition(n int, playerID func(i int) string) [][]int {
	pos := make(map[string]int)
	var groups [][]int
	for i := 0; i < n; i++ {
		id := playerID(i)
		g, ok := pos[id]
		if !ok {
			g = len(groups)
			pos[id] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// lessPlayerDate orders rows by (player_id, date) ascending.
func lessPlayerDate(aID string, aDate time.Time, bID string, bDate time.Time) bool {
	if aID != bID {
		return aID < bID
	}
	return aDate.Before(bDate)
}
