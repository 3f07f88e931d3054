// Package scoring combines a segment's relevance, the user's topic
// weight, and freshness decay into one final score, keeping the
// component values around so every ranking decision can be explained.
package scoring

import (
	"time"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/freshness"
	"DigestEngine/internal/ports"
)

// DefaultRelevance substitutes for a segment that arrived unscored.
const DefaultRelevance = 0.5

// Quality-evaluation blend weights.
const (
	weightRecency      = 0.6
	weightConnectivity = 0.4
)

// Final computes the personalized score with its full breakdown.
// Deterministic and pure given its inputs.
func Final(seg domain.ScoredSegment, weights domain.UserWeights, reference time.Time) domain.ScoreBreakdown {
	weight := weights.Weight(seg.TopicID)
	decay := freshness.Decay(seg.CreatedAt, reference)

	return domain.ScoreBreakdown{
		SegmentID: seg.ID,
		Relevance: seg.Relevance,
		Weight:    weight,
		Decay:     decay,
		Final:     seg.Relevance * (float64(weight) / 100.0) * decay,
	}
}

// Quality folds an evaluator verdict into a [0,1] relevance value.
func Quality(eval ports.QualityEvaluation) float64 {
	recency := clamp01(eval.RecencyScore / 100.0)
	connectivity := clamp01(eval.ConnectivityScore / 100.0)
	return weightRecency*recency + weightConnectivity*connectivity
}

// NeutralQuality is the substitute relevance when the evaluator fails:
// 0.5 on both axes, never a propagated error.
func NeutralQuality() float64 {
	return Quality(ports.QualityEvaluation{RecencyScore: 50, ConnectivityScore: 50})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
