package features

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/loadmon/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Method names a readiness scoring formula.
type Method string

// MethodSimple is sleep_quality + mood - soreness - fatigue - stress.
const MethodSimple Method = "simple"

// ParseMethod validates a scoring method name.
func ParseMethod(s string) (Method, error) {
	if Method(strings.ToLower(strings.TrimSpace(s))) == MethodSimple {
		return MethodSimple, nil
	}
	return "", fmt.Errorf("readiness method %q must be simple: %w", s, model.ErrUnsupportedOption)
}

// ReadinessScorer computes readiness_raw and readiness_score per wellness row.
type ReadinessScorer struct {
	method      Method
	standardize bool
}

// NewReadinessScorer creates a scorer. Standardization is on by default.
func NewReadinessScorer(opts ...ReadinessOption) (*ReadinessScorer, error) {
	s := &ReadinessScorer{
		method:      MethodSimple,
		standardize: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	m, err := ParseMethod(string(s.method))
	if err != nil {
		return nil, err
	}
	s.method = m
	return s, nil
}

// Score returns wellness sorted by (player_id, date) with readiness attached.
//
// When standardizing, each player's raw values are z-scored against that
// player's population mean and standard deviation over all of their
// non-missing rows. A zero or undefined deviation yields a score of 0.
func (s *ReadinessScorer) Score(wellness []model.WellnessRecord) []model.FeaturedWellness {
	sorted := model.SortWellness(wellness)
	out := make([]model.FeaturedWellness, len(sorted))
	for i, w := range sorted {
		out[i] = model.FeaturedWellness{WellnessRecord: w, ReadinessRaw: simple(w)}
	}

	if !s.standardize {
		for i := range out {
			out[i].ReadinessScore = out[i].ReadinessRaw
		}
		return out
	}

	groups := model.Partition(len(out), func(i int) string { return out[i].PlayerID })
	for _, idx := range groups {
		var xs []float64
		for _, i := range idx {
			if out[i].ReadinessRaw != nil {
				xs = append(xs, *out[i].ReadinessRaw)
			}
		}
		if len(xs) == 0 {
			continue
		}
		mean, std := stat.PopMeanStdDev(xs, nil)
		degenerate := std == 0 || math.IsNaN(std) || math.IsInf(std, 0)
		for _, i := range idx {
			raw := out[i].ReadinessRaw
			if raw == nil {
				continue
			}
			if degenerate {
				out[i].ReadinessScore = model.Float(0)
				continue
			}
			out[i].ReadinessScore = model.Float((*raw - mean) / std)
		}
	}
	return out
}

func simple(w model.WellnessRecord) *float64 {
	if w.SleepQuality == nil || w.Mood == nil || w.Soreness == nil || w.Fatigue == nil || w.Stress == nil {
		return nil
	}
	return model.Float(*w.SleepQuality + *w.Mood - *w.Soreness - *w.Fatigue - *w.Stress)
}
