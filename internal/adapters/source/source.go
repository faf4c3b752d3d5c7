// Package source loads the players, sessions and wellness tables from CSV.
//
// Columns are matched by header name, so order does not matter and extra
// columns are ignored. Cells are kept as text; numeric coercion belongs to
// the preprocessors.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/loadmon/internal/domain/model"
)

// File names inside the data directory.
const (
	PlayersFile  = "players.csv"
	SessionsFile = "sessions.csv"
	WellnessFile = "wellness.csv"
)

// Required columns per table.
var (
	PlayerColumns  = []string{"player_id", "player_name", "position", "status"}
	SessionColumns = []string{
		"date", "player_id", "session_type",
		model.ColMinutes, model.ColSRPE, model.ColExternalLoad, model.ColTotalAccels, model.ColJumpCount,
	}
	WellnessColumns = []string{
		"date", "player_id",
		model.ColSleepHours, model.ColSleepQuality, model.ColSoreness, model.ColFatigue, model.ColStress, model.ColMood,
	}
)

const bom = "\ufeff"

// Load reads the three tables from dir.
func Load(ctx context.Context, dir string) (model.Tables, error) {
	var t model.Tables
	steps := []struct {
		name string
		read func(io.Reader) error
	}{
		{PlayersFile, func(r io.Reader) (err error) { t.Players, err = ReadPlayers(r); return err }},
		{SessionsFile, func(r io.Reader) (err error) { t.Sessions, err = ReadSessions(r); return err }},
		{WellnessFile, func(r io.Reader) (err error) { t.Wellness, err = ReadWellness(r); return err }},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return model.Tables{}, err
		}
		if err := readFile(filepath.Join(dir, s.name), s.read); err != nil {
			return model.Tables{}, err
		}
	}
	return t, nil
}

func readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadPlayers parses the players table.
func ReadPlayers(r io.Reader) ([]model.Player, error) {
	var out []model.Player
	err := scan(r, "players", PlayerColumns, func(_ int, get func(string) string) {
		out = append(out, model.Player{
			PlayerID:   get("player_id"),
			PlayerName: get("player_name"),
			Position:   get("position"),
			Status:     get("status"),
		})
	})
	return out, err
}

// ReadSessions parses the sessions table. avg_hr is optional.
func ReadSessions(r io.Reader) ([]model.RawSession, error) {
	var out []model.RawSession
	err := scan(r, "sessions", SessionColumns, func(line int, get func(string) string) {
		out = append(out, model.RawSession{
			Line:         line,
			Date:         get("date"),
			PlayerID:     get("player_id"),
			SessionType:  get("session_type"),
			Minutes:      get(model.ColMinutes),
			SRPE:         get(model.ColSRPE),
			ExternalLoad: get(model.ColExternalLoad),
			TotalAccels:  get(model.ColTotalAccels),
			JumpCount:    get(model.ColJumpCount),
			AvgHR:        get(model.ColAvgHR),
		})
	})
	return out, err
}

// ReadWellness parses the wellness table.
func ReadWellness(r io.Reader) ([]model.RawWellness, error) {
	var out []model.RawWellness
	err := scan(r, "wellness", WellnessColumns, func(line int, get func(string) string) {
		out = append(out, model.RawWellness{
			Line:         line,
			Date:         get("date"),
			PlayerID:     get("player_id"),
			SleepHours:   get(model.ColSleepHours),
			SleepQuality: get(model.ColSleepQuality),
			Soreness:     get(model.ColSoreness),
			Fatigue:      get(model.ColFatigue),
			Stress:       get(model.ColStress),
			Mood:         get(model.ColMood),
		})
	})
	return out, err
}

// scan reads the header, checks required columns and calls row for every
// record with its 1-based file line and a by-name cell accessor.
func scan(r io.Reader, table string, required []string, row func(line int, get func(string) string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &SchemaError{Table: table, Missing: required}
	}
	if err != nil {
		return fmt.Errorf("%s header: %w", table, err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		pos[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: table, Missing: missing}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
		line, _ := cr.FieldPos(0)
		row(line, func(col string) string {
			i, ok := pos[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		})
	}
}
