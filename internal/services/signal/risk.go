package signal

import (
	"math"

	"LimesMS/internal/domain/models"
)

// MaxRisk is the upper bound of every risk score.
const MaxRisk = 5.0

// RiskInput is what the risk score reads from a computed signal.
type RiskInput struct {
	SlopePerDay *float64
	ZScore      float64
	Rows        []models.MonitorRow
	Human       *float64
}

// Risk is the scored result. Base excludes the human blend and escalation.
type Risk struct {
	Base      float64
	Score     float64
	Escalated bool
}

// Score buckets slope and z magnitude, averages them with the configured
// weights, blends in the human override, then applies the HIGH-row floor.
// Every stage is clamped to [0, MaxRisk].
func Score(in RiskInput, cfg RiskConfig) Risk {
	zs := bucket(math.Abs(in.ZScore), cfg.ZTiers, cfg.TierScores)

	var base float64
	if in.SlopePerDay == nil {
		base = zs
	} else {
		ss := bucket(math.Abs(*in.SlopePerDay)*100, cfg.SlopeTiers, cfg.TierScores)
		ws, wz := cfg.SlopeWeight, cfg.ZWeight
		if ws+wz <= 0 {
			ws, wz = 1, 1
		}
		base = (ws*ss + wz*zs) / (ws + wz)
	}
	base = clampRisk(base)

	score := base
	if in.Human != nil && !math.IsNaN(*in.Human) {
		w := cfg.HumanWeight
		score = (1-w)*base + w*clampRisk(*in.Human)
	}
	score = clampRisk(score)

	r := Risk{Base: base, Score: score}
	if AnyHigh(in.Rows) && r.Score < cfg.EscalationFloor {
		r.Score = clampRisk(cfg.EscalationFloor)
		r.Escalated = true
	}
	return r
}

// Classify maps a risk score to advice with inclusive upper bounds.
func Classify(risk float64, t AdviceThresholds) models.Advice {
	switch {
	case risk <= t.Buy:
		return models.AdviceBuy
	case risk <= t.Hold:
		return models.AdviceHold
	case risk <= t.Watch:
		return models.AdviceWatch
	default:
		return models.AdviceSell
	}
}

// bucket returns scores[i] for the first tier v falls below, or the last score.
// NaN and +Inf land in the top tier.
func bucket(v float64, tiers, scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	if math.IsNaN(v) {
		return scores[len(scores)-1]
	}
	for i, t := range tiers {
		if i >= len(scores)-1 {
			break
		}
		if v < t {
			return scores[i]
		}
	}
	return scores[len(scores)-1]
}

func clampRisk(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return MaxRisk
	case v < 0:
		return 0
	case v > MaxRisk:
		return MaxRisk
	default:
		return v
	}
}
