package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okian/loadmon/internal/adapters/repository"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/pkg/atomicfile"
)

const (
	summaryDays = 7
	standupTopN = 5
)

// SnapshotPlayers picks the player ranked first by the rank column and the
// player with the lowest readiness on date, without repeats.
func (r *Reporter) SnapshotPlayers(ctx context.Context, date time.Time) ([]string, error) {
	high, err := r.store.Rank(ctx, date, r.rankColumn, repository.Descending)
	if err != nil {
		return nil, err
	}
	low, err := r.store.Rank(ctx, date, model.ColReadinessScore, repository.Ascending)
	if err != nil {
		return nil, err
	}
	var ids []string
	if len(high) > 0 {
		ids = append(ids, high[0].Row.PlayerID)
	}
	if len(low) > 0 && (len(ids) == 0 || low[0].Row.PlayerID != ids[0]) {
		ids = append(ids, low[0].Row.PlayerID)
	}
	return ids, nil
}

// Summary is the plain-text snapshot of one player as of date. When the
// player has no row on date the latest earlier row is used.
func (r *Reporter) Summary(ctx context.Context, playerID string, date time.Time) (string, error) {
	row, err := r.store.AsOf(ctx, playerID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("No data found for player_id=%s.", playerID), nil
	}
	if err != nil {
		return "", err
	}
	asOf := row.Date

	history, err := r.store.PlayerHistory(ctx, playerID, asOf.AddDate(0, 0, -2*summaryDays+1), asOf)
	if err != nil {
		return "", err
	}
	cut := asOf.AddDate(0, 0, -summaryDays)
	var last, prev []model.DailyRow
	for _, h := range history {
		if h.Date.After(cut) {
			last = append(last, h)
		} else {
			prev = append(prev, h)
		}
	}

	name := row.PlayerName
	if name == "" {
		name = playerID
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s (%s)  Position: %s  Status: %s\n", name, playerID, row.Position, row.Status)
	fmt.Fprintf(&b, "Snapshot date: %s\n", model.FormatDate(asOf))

	if len(last) > 0 {
		lastLoad := sum(last, r.loadColumn)
		if change, ok := pctChange(lastLoad, prev, r.loadColumn); ok {
			fmt.Fprintf(&b, "Last 7 days %s: %.0f  (change vs prior 7 days: %.0f%%)\n", r.loadColumn, lastLoad, change*100)
		} else {
			fmt.Fprintf(&b, "Last 7 days %s: %.0f\n", r.loadColumn, lastLoad)
		}
	}

	if row.ReadinessScore != nil {
		if avg, ok := mean(last, model.ColReadinessScore); ok {
			fmt.Fprintf(&b, "Readiness (z): today %.2f,  7-day avg %.2f\n", *row.ReadinessScore, avg)
		} else {
			fmt.Fprintf(&b, "Readiness (z): today %.2f\n", *row.ReadinessScore)
		}
	}

	fmt.Fprintf(&b, "Alerts: %s", alerts(row))
	return b.String(), nil
}

// WriteSnapshot writes the player's chart and summary for date and returns
// their paths. A player absent from the table gets only the "no data"
// summary and an empty png path.
func (r *Reporter) WriteSnapshot(ctx context.Context, playerID string, date time.Time) (png, txt string, err error) {
	stamp := model.FormatDate(date)
	txt = filepath.Join(r.outDir, fmt.Sprintf("player_%s_summary_%s.txt", playerID, stamp))

	history, err := r.store.PlayerHistory(ctx, playerID, date.AddDate(0, 0, -r.lookbackDays+1), date)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return "", "", err
	default:
		png = filepath.Join(r.outDir, FiguresDir, fmt.Sprintf("player_%s_snapshot_%s.png", playerID, stamp))
		if err := atomicfile.Write(png, func(w io.Writer) error {
			return r.Chart(w, playerID, date, history)
		}); err != nil {
			return "", "", fmt.Errorf("snapshot chart %s: %w", playerID, err)
		}
	}

	text, err := r.Summary(ctx, playerID, date)
	if err != nil {
		return "", "", err
	}
	if err := atomicfile.WriteFile(txt, []byte(text+"\n")); err != nil {
		return "", "", fmt.Errorf("snapshot summary %s: %w", playerID, err)
	}
	return png, txt, nil
}

// Standup prints the daily standup for date: row count, top players by the
// standup column, lowest readiness and flagged athletes.
func (r *Reporter) Standup(ctx context.Context, w io.Writer, date time.Time) error {
	rows, err := r.store.OnDate(ctx, date)
	if err != nil {
		return err
	}
	high, err := r.store.Rank(ctx, date, r.standupColumn, repository.Descending)
	if err != nil {
		return err
	}
	low, err := r.store.Rank(ctx, date, model.ColReadinessScore, repository.Ascending)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== DAILY STANDUP ===")
	fmt.Fprintf(w, "Snapshot date: %s\n", model.FormatDate(date))
	fmt.Fprintf(w, "Rows for date: %d\n", len(rows))

	fmt.Fprintf(w, "\nTop %d by %s:\n", standupTopN, r.standupColumn)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "player_id\tplayer_name\t%s\t%s\tsession_type\n", r.standupColumn, r.loadColumn)
	for _, e := range head(high) {
		load, _ := e.Row.Value(r.loadColumn)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Row.PlayerID, e.Row.PlayerName, num(e.Value), num(load), e.Row.SessionType)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nBottom %d by readiness (z):\n", standupTopN)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "player_id\tplayer_name\treadiness_score\t%s\tsession_type\n", r.standupColumn)
	for _, e := range head(low) {
		rank, _ := e.Row.Value(r.standupColumn)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Row.PlayerID, e.Row.PlayerName, num(e.Value), num(rank), e.Row.SessionType)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var flagged []model.DailyRow
	for _, row := range rows {
		if row.LoadSpike() || row.LowReadiness() {
			flagged = append(flagged, row)
		}
	}
	if len(flagged) == 0 {
		fmt.Fprintln(w, "\nFlagged athletes: none")
		return nil
	}
	fmt.Fprintln(w, "\nFlagged athletes:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "player_id\tplayer_name\talerts")
	for _, row := range flagged {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.PlayerID, row.PlayerName, alerts(row))
	}
	return tw.Flush()
}

func head(entries []repository.Entry) []repository.Entry {
	if len(entries) > standupTopN {
		return entries[:standupTopN]
	}
	return entries
}

func alerts(row model.DailyRow) string {
	var out []string
	if row.LoadSpike() {
		out = append(out, "load spike")
	}
	if row.LowReadiness() {
		out = append(out, "low readiness")
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ", ")
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	if *v == math.Trunc(*v) && math.Abs(*v) < 1e9 {
		return fmt.Sprintf("%.0f", *v)
	}
	return fmt.Sprintf("%.2f", *v)
}

func sum(rows []model.DailyRow, col string) float64 {
	var total float64
	for _, r := range rows {
		if v, _ := r.Value(col); v != nil {
			total += *v
		}
	}
	return total
}

func mean(rows []model.DailyRow, col string) (float64, bool) {
	var total float64
	var n int
	for _, r := range rows {
		if v, _ := r.Value(col); v != nil {
			total += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

func pctChange(last float64, prev []model.DailyRow, col string) (float64, bool) {
	if len(prev) == 0 {
		return 0, false
	}
	p := sum(prev, col)
	if p <= 0 {
		return 0, false
	}
	return (last - p) / p, true
}
