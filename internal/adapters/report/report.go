// Package report renders the daily table for staff: the full daily CSV, a
// team report per snapshot date, player snapshots and the standup summary.
package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/okian/loadmon/internal/adapters/export"
	"github.com/okian/loadmon/internal/adapters/repository"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/pkg/atomicfile"
)

// File kinds reported for written outputs.
const (
	KindDaily   = "daily"
	KindTeam    = "team_report"
	KindFigure  = "snapshot_png"
	KindSummary = "snapshot_txt"
	DailyFile   = "daily.csv"
	FiguresDir  = "figures"
)

// Identity columns shared by the daily and team tables.
const (
	ColPlayerName = "player_name"
	ColPosition   = "position"
	ColStatus     = "status"
)

// Reporter reads a daily table through a repository.Store and writes reports
// under an output directory.
type Reporter struct {
	store         repository.Store
	outDir        string
	rolling       []string
	rankColumn    string
	standupColumn string
	loadColumn    string
	lookbackDays  int
}

// New creates a Reporter.
func New(store repository.Store, outDir string, opts ...Option) *Reporter {
	r := &Reporter{store: store, outDir: outDir}
	defaults(r)
	for _, opt := range opts {
		opt(r)
	}
	if r.rankColumn == "" {
		r.rankColumn = r.loadColumn
		if len(r.rolling) > 0 {
			r.rankColumn = r.rolling[len(r.rolling)-1]
		}
	}
	if r.standupColumn == "" {
		r.standupColumn = r.loadColumn
		if len(r.rolling) > 0 {
			r.standupColumn = r.rolling[0]
		}
	}
	return r
}

// SnapshotDate resolves the report date: the given date, or the latest date
// in the table when it is zero.
func (r *Reporter) SnapshotDate(ctx context.Context, date time.Time) (time.Time, error) {
	if !date.IsZero() {
		return model.Day(date), nil
	}
	return r.store.LatestDate(ctx)
}

// DailyColumns is the header of daily.csv.
func (r *Reporter) DailyColumns() []string {
	cols := []string{export.ColDate, export.ColPlayerID, ColPlayerName, ColPosition, ColStatus, export.ColSessionType}
	cols = append(cols, model.SessionColumns...)
	cols = append(cols, r.rolling...)
	cols = append(cols, export.ColHasWellness)
	cols = append(cols, model.WellnessColumns...)
	return append(cols,
		model.ColReadinessRaw, model.ColReadinessScore,
		model.ColLoadPctChange, model.ColFlagLoadSpike, model.ColFlagLowReadiness,
	)
}

// DailyTable is the whole daily table in (player_id, date) order.
func (r *Reporter) DailyTable(ctx context.Context) (export.Table, error) {
	t := export.Table{Name: "daily", Columns: r.DailyColumns()}
	for _, id := range r.store.Players(ctx) {
		rows, err := r.store.PlayerHistory(ctx, id, time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			return export.Table{}, err
		}
		for _, row := range rows {
			t.Rows = append(t.Rows, cells(row, t.Columns))
		}
	}
	return t, nil
}

// TeamColumns is the header of the team report.
func (r *Reporter) TeamColumns() []string {
	cols := []string{
		export.ColDate, export.ColPlayerID, ColPlayerName, ColPosition, ColStatus,
		export.ColSessionType, model.ColMinutes, model.ColSRPE, model.ColInternalLoad,
	}
	cols = append(cols, r.rolling...)
	return append(cols, model.ColReadinessScore, model.ColFlagLoadSpike, model.ColFlagLowReadiness)
}

// TeamTable holds the players with a row on date, by rank column
// descending with missing values last.
func (r *Reporter) TeamTable(ctx context.Context, date time.Time) (export.Table, error) {
	entries, err := r.store.Rank(ctx, date, r.rankColumn, repository.Descending)
	if err != nil {
		return export.Table{}, err
	}
	t := export.Table{Name: "team_report_" + model.FormatDate(date), Columns: r.TeamColumns()}
	for _, e := range entries {
		t.Rows = append(t.Rows, cells(e.Row, t.Columns))
	}
	return t, nil
}

// WriteDaily writes daily.csv and returns its path.
func (r *Reporter) WriteDaily(ctx context.Context) (string, error) {
	t, err := r.DailyTable(ctx)
	if err != nil {
		return "", err
	}
	return r.writeTable(filepath.Join(r.outDir, DailyFile), t)
}

// WriteTeamReport writes team_report_<date>.csv and returns its path.
func (r *Reporter) WriteTeamReport(ctx context.Context, date time.Time) (string, error) {
	t, err := r.TeamTable(ctx, date)
	if err != nil {
		return "", err
	}
	return r.writeTable(filepath.Join(r.outDir, t.Name+".csv"), t)
}

func (r *Reporter) writeTable(path string, t export.Table) (string, error) {
	if err := atomicfile.Write(path, func(w io.Writer) error { return export.WriteCSV(w, t) }); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// cells projects a row onto columns. Flags are explicit booleans, missing
// numbers are nil.
func cells(row model.DailyRow, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case export.ColDate:
			out[i] = model.FormatDate(row.Date)
		case export.ColPlayerID:
			out[i] = row.PlayerID
		case ColPlayerName:
			out[i] = row.PlayerName
		case ColPosition:
			out[i] = row.Position
		case ColStatus:
			out[i] = row.Status
		case export.ColSessionType:
			out[i] = row.SessionType
		case export.ColHasWellness:
			out[i] = row.HasWellness
		case model.ColFlagLoadSpike:
			out[i] = row.LoadSpike()
		case model.ColFlagLowReadiness:
			out[i] = row.LowReadiness()
		default:
			if v, _ := row.Value(c); v != nil {
				out[i] = *v
			}
		}
	}
	return out
}
