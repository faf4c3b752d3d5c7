package synth

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"

	"github.com/okian/loadmon/internal/adapters/source"
	"github.com/okian/loadmon/internal/domain/model"
	"github.com/okian/loadmon/pkg/atomicfile"
	"github.com/okian/loadmon/pkg/logger"
)

// Write stores t as players.csv, sessions.csv and wellness.csv under dir and
// returns the written paths.
func Write(ctx context.Context, dir string, t model.Tables) ([]string, error) {
	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{source.PlayersFile, source.PlayerColumns, playerRows(t.Players)},
		{source.SessionsFile, append(append([]string{}, source.SessionColumns...), model.ColAvgHR), sessionRows(t.Sessions)},
		{source.WellnessFile, source.WellnessColumns, wellnessRows(t.Wellness)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(dir, f.name)
		err := atomicfile.Write(path, func(w io.Writer) error {
			cw := csv.NewWriter(w)
			if err := cw.Write(f.header); err != nil {
				return err
			}
			if err := cw.WriteAll(f.rows); err != nil {
				return err
			}
			return cw.Error()
		})
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
		logger.Get().Debug(ctx, "synthetic table written",
			logger.String("path", path), logger.Int("rows", len(f.rows)))
	}
	return paths, nil
}

func playerRows(ps []model.Player) [][]string {
	out := make([][]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, []string{p.PlayerID, p.PlayerName, p.Position, p.Status})
	}
	return out
}

func sessionRows(ss []model.RawSession) [][]string {
	out := make([][]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, []string{
			s.Date, s.PlayerID, s.SessionType,
			s.Minutes, s.SRPE, s.ExternalLoad, s.TotalAccels, s.JumpCount, s.AvgHR,
		})
	}
	return out
}

func wellnessRows(ws []model.RawWellness) [][]string {
	out := make([][]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, []string{
			w.Date, w.PlayerID,
			w.SleepHours, w.SleepQuality, w.Soreness, w.Fatigue, w.Stress, w.Mood,
		})
	}
	return out
}
