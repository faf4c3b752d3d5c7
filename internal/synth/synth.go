// Package synth generates deterministic, realistic players, sessions and
// wellness tables for demos and end-to-end tests.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// Probabilities of gaps in the generated data.
const (
	restDayChance    = 0.12
	unansweredChance = 0.10
	blankCellChance  = 0.04
	matchEvery       = 7
)

// Training profile ranges.
const (
	minutesMin   = 45.0
	minutesRange = 50.0
	matchMinutes = 90.0
	srpeMin      = 3.0
	srpeRange    = 5.0
	extPerMinMin = 4.0
	extPerMinRng = 4.0
	hrMin        = 125.0
	hrRange      = 45.0
)

var (
	positions = []string{"GK", "DF", "MF", "FW"}
	statuses  = []string{"active", "active", "active", "active", "rehab"}
	names     = []string{
		"Ana", "Bo", "Cy", "Dee", "Eli", "Fia", "Gus", "Hana", "Ivo", "Jo",
		"Kai", "Lea", "Max", "Nia", "Oto", "Pia", "Quin", "Rui", "Sol", "Tea",
	}
)

// Config controls generation.
type Config struct {
	Players int
	Days    int
	Start   time.Time
	Seed    uint64
}

// DefaultConfig is a squad of 20 over 8 weeks.
func DefaultConfig() Config {
	return Config{
		Players: 20,
		Days:    56,
		Start:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:    42,
	}
}

// Validate checks the config bounds.
func (c Config) Validate() error {
	if c.Players < 1 {
		return fmt.Errorf("players %d must be >= 1", c.Players)
	}
	if c.Days < 1 {
		return fmt.Errorf("days %d must be >= 1", c.Days)
	}
	return nil
}

// Generate builds the three raw tables. Equal configs give equal tables.
func Generate(cfg Config) (model.Tables, error) {
	if err := cfg.Validate(); err != nil {
		return model.Tables{}, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	start := model.Day(cfg.Start)

	var t model.Tables
	line := 2
	wline := 2
	for p := 0; p < cfg.Players; p++ {
		id := fmt.Sprintf("P%03d", p+1)
		t.Players = append(t.Players, model.Player{
			PlayerID:   id,
			PlayerName: fmt.Sprintf("%s %d", names[p%len(names)], p/len(names)+1),
			Position:   positions[rng.IntN(len(positions))],
			Status:     statuses[rng.IntN(len(statuses))],
		})

		// Per-player intensity keeps some athletes consistently heavier.
		intensity := 0.8 + 0.4*rng.Float64()
		fatigue := 3.0
		for d := 0; d < cfg.Days; d++ {
			date := model.FormatDate(start.AddDate(0, 0, d))
			match := d%matchEvery == matchEvery-1

			if !match && rng.Float64() < restDayChance {
				fatigue = math.Max(1, fatigue-1)
				continue
			}

			minutes := minutesMin + rng.Float64()*minutesRange
			kind := "training"
			if match {
				minutes, kind = matchMinutes, "match"
			}
			srpe := math.Min(10, math.Round(srpeMin+rng.Float64()*srpeRange*intensity))
			if match {
				srpe = math.Min(10, srpe+2)
			}
			t.Sessions = append(t.Sessions, model.RawSession{
				Line:         line,
				Date:         date,
				PlayerID:     id,
				SessionType:  kind,
				Minutes:      cell(rng, math.Round(minutes)),
				SRPE:         cell(rng, srpe),
				ExternalLoad: cell(rng, math.Round(minutes*(extPerMinMin+rng.Float64()*extPerMinRng))),
				TotalAccels:  cell(rng, float64(10+rng.IntN(50))),
				JumpCount:    cell(rng, float64(rng.IntN(40))),
				AvgHR:        cell(rng, math.Round(hrMin+rng.Float64()*hrRange)),
			})
			line++

			fatigue = math.Max(1, math.Min(10, fatigue+(srpe-5)*0.4+rng.NormFloat64()*0.5))
			if rng.Float64() < unansweredChance {
				continue
			}
			t.Wellness = append(t.Wellness, model.RawWellness{
				Line:         wline,
				Date:         date,
				PlayerID:     id,
				SleepHours:   cell(rng, math.Round((5.5+rng.Float64()*3.5)*10)/10),
				SleepQuality: cell(rng, float64(1+rng.IntN(5))),
				Soreness:     cell(rng, clamp(math.Round(fatigue+rng.NormFloat64()))),
				Fatigue:      cell(rng, clamp(math.Round(fatigue))),
				Stress:       cell(rng, clamp(math.Round(3+rng.NormFloat64()*1.5))),
				Mood:         cell(rng, clamp(math.Round(8-fatigue/2+rng.NormFloat64()))),
			})
			wline++
		}
	}
	return t, nil
}

// cell formats v, or leaves it blank now and then like an unanswered field.
func cell(rng *rand.Rand, v float64) string {
	if rng.Float64() < blankCellChance {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp(v float64) float64 {
	return math.Max(1, math.Min(10, v))
}
