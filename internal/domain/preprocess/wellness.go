package preprocess

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// FillMode selects how missing wellness values are filled within a player.
type FillMode string

// Supported fill modes.
const (
	FillForward  FillMode = "forward-fill"
	FillBackward FillMode = "backward-fill"
	FillNone     FillMode = "none"
)

// ParseFillMode validates a fill mode name. ffill and bfill are accepted as
// aliases.
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward-fill", "ffill":
		return FillForward, nil
	case "backward-fill", "bfill":
		return FillBackward, nil
	case "none":
		return FillNone, nil
	}
	return "", fmt.Errorf("fill mode %q must be one of forward-fill, backward-fill, none: %w", s, model.ErrUnsupportedOption)
}

// Wellness normalizes raw wellness rows and fills gaps per player according
// to mode. Same date and numeric contract as Sessions.
func Wellness(raw []model.RawWellness, mode FillMode) ([]model.WellnessRecord, error) {
	if _, err := ParseFillMode(string(mode)); err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(raw))
	var bad []BadDate
	for i, r := range raw {
		d, err := parseDate(r.Date)
		if err != nil {
			bad = append(bad, BadDate{Line: r.Line, PlayerID: r.PlayerID, Value: r.Date})
			continue
		}
		dates[i] = d
	}
	if len(bad) > 0 {
		return nil, &DateParseError{Table: "wellness", Column: "date", Rows: bad}
	}

	out := make([]model.WellnessRecord, len(raw))
	for i, r := range raw {
		out[i] = model.WellnessRecord{
			Line:         r.Line,
			Date:         dates[i],
			PlayerID:     r.PlayerID,
			SleepHours:   parseNumber(r.SleepHours),
			SleepQuality: parseNumber(r.SleepQuality),
			Soreness:     parseNumber(r.Soreness),
			Fatigue:      parseNumber(r.Fatigue),
			Stress:       parseNumber(r.Stress),
			Mood:         parseNumber(r.Mood),
		}
	}
	out = model.SortWellness(out)

	mode, _ = ParseFillMode(string(mode))
	if mode == FillNone {
		return out, nil
	}
	groups := model.Partition(len(out), func(i int) string { return out[i].PlayerID })
	for _, idx := range groups {
		for _, col := range model.WellnessColumns {
			fill(out, idx, col, mode)
		}
	}
	return out, nil
}

// fill propagates the last (forward) or next (backward) known value of col
// through the rows idx of one player.
func fill(rows []model.WellnessRecord, idx []int, col string, mode FillMode) {
	var last *float64
	step := func(i int) {
		slot := rows[i].Field(col)
		if *slot == nil {
			*slot = last
			return
		}
		last = *slot
	}
	if mode == FillForward {
		for _, i := range idx {
			step(i)
		}
		return
	}
	for k := len(idx) - 1; k >= 0; k-- {
		step(idx[k])
	}
}
