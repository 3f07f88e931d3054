// Package trust maintains the long-run quality score and lifecycle state
// of publishing sources. Scores move only during the periodic recompute,
// by a bounded step, so single noisy observations cannot whipsaw a source
// in or out of circulation.
package trust

import (
	"fmt"
	"math"

	"DigestEngine/internal/domain"
)

// Factor weights; must sum to 1.0.
const (
	WeightRetention     = 0.50
	WeightLeadTime      = 0.25
	WeightSignalToNoise = 0.25
)

// neutralFactor stands in when a source has no observations yet.
const neutralFactor = 0.5

// Factors are the normalized [0,1] inputs to the trust score.
type Factors struct {
	Retention     float64 // listeners consuming >75% of duration, window average
	LeadTime      float64 // publish-lead reward relative to cluster formation
	SignalToNoise float64 // fraction of recent publications actually selected
}

// Compute folds the weighted factors into a [0,100] trust score.
// Factor values outside [0,1] are a programming error.
func (f Factors) Compute() float64 {
	for _, v := range []float64{f.Retention, f.LeadTime, f.SignalToNoise} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			panic(fmt.Sprintf("trust: factor %v outside [0,1]", v))
		}
	}
	score := 100 * (WeightRetention*f.Retention +
		WeightLeadTime*f.LeadTime +
		WeightSignalToNoise*f.SignalToNoise)
	return clamp(score, 0, 100)
}

// LeadWindow shapes the publish-lead reward: a tent peaking at
// CenterHours and reaching zero at lead 0 and at OuterHours.
type LeadWindow struct {
	CenterHours float64
	OuterHours  float64
}

// DefaultLeadWindow peaks mid way through the 6-24h sweet spot.
func DefaultLeadWindow() LeadWindow {
	return LeadWindow{CenterHours: 15, OuterHours: 48}
}

// Reward maps an observed lead (hours ahead of cluster formation) to [0,1].
func (w LeadWindow) Reward(leadHours float64) float64 {
	if leadHours <= 0 || leadHours >= w.OuterHours {
		return 0
	}
	if leadHours <= w.CenterHours {
		return leadHours / w.CenterHours
	}
	return (w.OuterHours - leadHours) / (w.OuterHours - w.CenterHours)
}

// FactorsFrom derives the factor vector from a source's rolling window.
// A source with no observations yet gets neutral factors.
func FactorsFrom(src domain.Source, window LeadWindow) Factors {
	f := Factors{
		Retention:     neutralFactor,
		LeadTime:      neutralFactor,
		SignalToNoise: neutralFactor,
	}

	if n := len(src.Outcomes); n > 0 {
		retention, observed, selected := 0.0, 0, 0
		for _, o := range src.Outcomes {
			if o.HasRetention {
				retention += clamp(o.Retention, 0, 1)
				observed++
			}
			if o.Selected {
				selected++
			}
		}
		if observed > 0 {
			f.Retention = retention / float64(observed)
		}
		f.SignalToNoise = float64(selected) / float64(n)
	}

	if src.LeadTimeHours > 0 {
		f.LeadTime = window.Reward(src.LeadTimeHours)
	}

	return f
}

// CapStep bounds how far the trust score may move in one recompute cycle
// (the global safety lock against oscillation).
func CapStep(current, target, maxStep float64) float64 {
	delta := clamp(target-current, -maxStep, maxStep)
	return clamp(current+delta, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
