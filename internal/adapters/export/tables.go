package export

import (
	"sort"
	"strconv"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// Table names.
const (
	TablePlayers  = "dim_players"
	TableCalendar = "dim_calendar"
	TableFact     = "fact_daily"
)

// Fact columns that are not metrics.
const (
	ColPlayerID    = "player_id"
	ColDateKey     = "date_key"
	ColDate        = "date"
	ColSessionType = "session_type"
	ColHasWellness = "has_wellness"
)

// Table is a header plus typed rows. Cells are string, int, float64, bool,
// or nil for a missing value.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// DateKey returns the integer YYYYMMDD key of a calendar day.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Build returns the three BI tables in dim_players, dim_calendar, fact_daily order.
func Build(players []model.Player, rows []model.DailyRow) []Table {
	return []Table{PlayersDim(players), CalendarDim(rows), FactDaily(rows)}
}

// PlayersDim is the player reference table ordered by player_id.
func PlayersDim(players []model.Player) Table {
	sorted := make([]model.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PlayerID < sorted[j].PlayerID })

	t := Table{
		Name:    TablePlayers,
		Columns: []string{ColPlayerID, "player_name", "position", "status"},
		Rows:    make([][]any, len(sorted)),
	}
	for i, p := range sorted {
		t.Rows[i] = []any{p.PlayerID, p.PlayerName, p.Position, p.Status}
	}
	return t
}

// CalendarDim has one row per distinct date of the daily table, ascending.
func CalendarDim(rows []model.DailyRow) Table {
	seen := make(map[int]time.Time)
	for _, r := range rows {
		d := model.Day(r.Date)
		seen[DateKey(d)] = d
	}
	keys := make([]int, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	t := Table{
		Name: TableCalendar,
		Columns: []string{
			ColDate, ColDateKey, "year", "month", "month_name",
			"iso_week", "day", "day_name", "is_weekend",
		},
		Rows: make([][]any, len(keys)),
	}
	for i, k := range keys {
		d := seen[k]
		_, week := d.ISOWeek()
		wd := d.Weekday()
		t.Rows[i] = []any{
			model.FormatDate(d), k, d.Year(), int(d.Month()), d.Month().String()[:3],
			week, d.Day(), wd.String()[:3], wd == time.Saturday || wd == time.Sunday,
		}
	}
	return t
}

// FactColumns returns the fact table header for a daily table whose rows
// carry the given rolling columns.
func FactColumns(rolling []string) []string {
	cols := []string{ColPlayerID, ColDateKey, ColDate, ColSessionType}
	cols = append(cols, model.SessionColumns...)
	cols = append(cols, rolling...)
	cols = append(cols, ColHasWellness)
	cols = append(cols, model.WellnessColumns...)
	cols = append(cols,
		model.ColReadinessRaw, model.ColReadinessScore,
		model.ColLoadPctChange, model.ColFlagLoadSpike, model.ColFlagLowReadiness,
	)
	return cols
}

// FactDaily is the daily table keyed by player_id and date_key, sorted by
// (player_id, date). Flags are always explicit booleans.
func FactDaily(rows []model.DailyRow) Table {
	sorted := model.SortDaily(rows)
	t := Table{
		Name:    TableFact,
		Columns: FactColumns(model.RollingColumns(sorted)),
		Rows:    make([][]any, len(sorted)),
	}
	for i, r := range sorted {
		row := make([]any, 0, len(t.Columns))
		for _, col := range t.Columns {
			row = append(row, factCell(r, col))
		}
		t.Rows[i] = row
	}
	return t
}

func factCell(r model.DailyRow, col string) any {
	switch col {
	case ColPlayerID:
		return r.PlayerID
	case ColDateKey:
		return DateKey(r.Date)
	case ColDate:
		return model.FormatDate(r.Date)
	case ColSessionType:
		return r.SessionType
	case ColHasWellness:
		return r.HasWellness
	case model.ColFlagLoadSpike:
		return r.LoadSpike()
	case model.ColFlagLowReadiness:
		return r.LowReadiness()
	}
	if v, _ := r.Value(col); v != nil {
		return *v
	}
	return nil
}

// formatCell renders a cell for CSV. Floats use the shortest representation
// that parses back to the same value.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
