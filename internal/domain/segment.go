package domain

import "time"

// Tier is the editorial trust classification of a publishing source.
type Tier string

const (
	TierAuthority  Tier = "authority"
	TierCorporate  Tier = "corporate"
	TierGeneralist Tier = "generalist"
)

// Segment is a scored content unit produced by the ingestion layer.
// Immutable once scored for a given day; recomputation supersedes it.
type Segment struct {
	ID              string
	TopicID         string
	SourceID        string
	Tier            Tier
	Title           string
	Summary         string
	Relevance       float64 // raw relevance in [0,1]; 0 means "not yet scored"
	CreatedAt       time.Time
	DurationSeconds int
	MediaRef        string
}

// ScoredSegment is a pool member after cluster scoring. Its embedded
// Relevance is replaced by the cluster-assigned value used for ranking;
// the ingested raw relevance survives in RawRelevance for wildcard
// selection and fallback ordering.
type ScoredSegment struct {
	Segment
	RawRelevance float64 // relevance as ingested or evaluated, [0,1]
	ClusterScore float64 // the owning cluster's aggregate score
	BaseShare    float64 // this segment's share of the cluster score
}

// ScoredPool is the deduplicated, expiry-filtered, gate-passing segment
// set for one calendar date, ready for per-user selection.
type ScoredPool struct {
	Date     time.Time
	Segments []ScoredSegment
}

// Cluster groups same-topic, same-day segments corroborating one event.
// Formed by grouping the daily pool; consumed read-only by the scorer.
type Cluster struct {
	TopicID  string
	Segments []Segment
}

// DistinctSources counts unique publishers contributing to the cluster.
func (c Cluster) DistinctSources() int {
	seen := map[string]bool{}
	for _, s := range c.Segments {
		seen[s.SourceID] = true
	}
	return len(seen)
}

// TierCount returns how many member segments carry the given tier.
func (c Cluster) TierCount(tier Tier) int {
	n := 0
	for _, s := range c.Segments {
		if s.Tier == tier {
			n++
		}
	}
	return n
}

// DistinctSourcesByTier counts unique publishers of one tier.
func (c Cluster) DistinctSourcesByTier(tier Tier) int {
	seen := map[string]bool{}
	for _, s := range c.Segments {
		if s.Tier == tier {
			seen[s.SourceID] = true
		}
	}
	return len(seen)
}
