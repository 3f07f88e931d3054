package cluster

import (
	"time"

	"DigestEngine/internal/domain"
)

// AssemblePool groups a day's segments into topic clusters, scores each,
// drops gated-out clusters, and distributes cluster scores back onto the
// surviving segments as their relevance.
//
// Distributed scores are normalized by the day's maximum so relevance
// lands in [0,1]; a single positive scale factor per day, so ordering is
// preserved. Returns the pool and how many clusters the gate excluded.
func AssemblePool(day time.Time, segments []domain.Segment, trust TrustLookup) (domain.ScoredPool, int) {
	pool := domain.ScoredPool{Date: day}
	excluded := 0

	type scored struct {
		seg   domain.Segment
		score float64
		share float64
	}
	var all []scored

	maxDistributed := 0.0
	for _, c := range GroupByTopic(segments) {
		res := Score(c, trust)
		if !res.Included {
			excluded++
			continue
		}
		for i, seg := range c.Segments {
			distributed := res.Score * res.Shares[i]
			if distributed > maxDistributed {
				maxDistributed = distributed
			}
			all = append(all, scored{seg: seg, score: res.Score, share: res.Shares[i]})
		}
	}

	for _, s := range all {
		relevance := 0.0
		if maxDistributed > 0 {
			relevance = s.score * s.share / maxDistributed
		}
		member := domain.ScoredSegment{
			Segment:      s.seg,
			RawRelevance: s.seg.Relevance,
			ClusterScore: s.score,
			BaseShare:    s.share,
		}
		member.Relevance = relevance
		pool.Segments = append(pool.Segments, member)
	}

	return pool, excluded
}
