// Package preprocess normalizes raw session and wellness rows: date parsing,
// numeric coercion, derived columns, ordering and gap filling.
package preprocess

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	model.DateLayout,
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-Jan-2006",
}

// parseDate parses a date cell into its UTC calendar day.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseNumber coerces a numeric cell. Blank, NaN and non-numeric cells are
// missing, never an error.
func parseNumber(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// product multiplies two optional values; missing if either is missing.
func product(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return model.Float(*a * *b)
}
