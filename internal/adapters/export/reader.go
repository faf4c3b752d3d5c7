package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/loadmon/internal/domain/model"
)

// ErrMalformedFact marks a fact table that cannot be read back.
var ErrMalformedFact = errors.New("malformed fact table")

// Triple is one metric of one player on one date. Value is float64, bool,
// or nil for a missing number.
type Triple struct {
	PlayerID string
	Date     string
	Metric   string
	Value    any
}

var boolColumns = map[string]bool{
	ColHasWellness:            true,
	model.ColFlagLoadSpike:    true,
	model.ColFlagLowReadiness: true,
}

var keyColumns = map[string]bool{
	ColPlayerID:    true,
	ColDateKey:     true,
	ColDate:        true,
	ColSessionType: true,
}

// DailyTriples flattens the daily table into the triples its fact table encodes.
func DailyTriples(rows []model.DailyRow) []Triple {
	t := FactDaily(rows)
	var out []Triple
	for i, r := range model.SortDaily(rows) {
		for j, col := range t.Columns {
			if keyColumns[col] {
				continue
			}
			out = append(out, Triple{
				PlayerID: r.PlayerID,
				Date:     model.FormatDate(r.Date),
				Metric:   col,
				Value:    t.Rows[i][j],
			})
		}
	}
	return out
}

// ReadFactCSV reconstructs triples from an exported fact_daily CSV.
// Boolean columns must hold true or false.
func ReadFactCSV(r io.Reader) ([]Triple, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedFact, err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	for _, req := range []string{ColPlayerID, ColDate} {
		if _, ok := pos[req]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedFact, req)
		}
	}

	var out []Triple
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedFact, line, err)
		}
		id, date := rec[pos[ColPlayerID]], rec[pos[ColDate]]
		for i, col := range header {
			if keyColumns[col] {
				continue
			}
			v, err := parseCell(col, rec[i])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %w", ErrMalformedFact, line, col, err)
			}
			out = append(out, Triple{PlayerID: id, Date: date, Metric: col, Value: v})
		}
	}
}

func parseCell(col, s string) (any, error) {
	if boolColumns[col] {
		return strconv.ParseBool(s)
	}
	if s == "" {
		return nil, nil
	}
	return strconv.ParseFloat(s, 64)
}
