// Package cluster scores same-topic segment groups by source tier and
// corroboration, and decides whether a group is worth surfacing at all.
package cluster

import (
	"sort"

	"DigestEngine/internal/domain"
)

// Tier multipliers applied to the publisher's trust score.
const (
	MultiplierAuthority  = 2.0
	MultiplierCorporate  = 1.5
	MultiplierGeneralist = 1.0
)

// Corroboration bonuses.
const (
	BonusPerExtraSource = 20.0 // per distinct source beyond the first
	BonusMixedTiers     = 50.0 // authority/corporate confirmed by generalist coverage
)

// MinGeneralistSources is the corroboration floor for clusters with no
// authority coverage.
const MinGeneralistSources = 5

// TrustLookup resolves a source id to its current trust score.
type TrustLookup func(sourceID string) float64

// Result carries the scoring outcome for one cluster.
type Result struct {
	Included bool
	Score    float64
	Bases    []float64 // per-segment base, aligned with cluster.Segments
	Shares   []float64 // per-segment share of Score, sums to 1 when included
}

// GroupByTopic partitions a day's segments into clusters, one per topic,
// in deterministic topic order.
func GroupByTopic(segments []domain.Segment) []domain.Cluster {
	byTopic := map[string][]domain.Segment{}
	for _, s := range segments {
		byTopic[s.TopicID] = append(byTopic[s.TopicID], s)
	}

	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	clusters := make([]domain.Cluster, 0, len(topics))
	for _, topic := range topics {
		clusters = append(clusters, domain.Cluster{TopicID: topic, Segments: byTopic[topic]})
	}
	return clusters
}

// Included applies the inclusion gate: at least one authority segment
// (an exclusive early signal) or corroboration from five distinct
// generalist sources. The gate is binary; score never overrides it.
func Included(c domain.Cluster) bool {
	if c.TierCount(domain.TierAuthority) >= 1 {
		return true
	}
	return c.DistinctSourcesByTier(domain.TierGeneralist) >= MinGeneralistSources
}

// Score computes the cluster's aggregate score and its distribution onto
// member segments, proportional to each segment's base contribution.
//
// Only one corporate segment per cluster earns the corporate multiplier;
// the rest fall back to the generalist multiplier. The credited segment
// is the corporate one with the highest trust score, ties broken by id.
func Score(c domain.Cluster, trust TrustLookup) Result {
	if !Included(c) {
		return Result{Included: false}
	}

	bases := make([]float64, len(c.Segments))
	creditIdx := creditedCorporate(c, trust)

	sumBases := 0.0
	for i, s := range c.Segments {
		mult := MultiplierGeneralist
		switch s.Tier {
		case domain.TierAuthority:
			mult = MultiplierAuthority
		case domain.TierCorporate:
			if i == creditIdx {
				mult = MultiplierCorporate
			}
		}
		bases[i] = trust(s.SourceID) * mult
		sumBases += bases[i]
	}

	score := sumBases
	if extra := c.DistinctSources() - 1; extra > 0 {
		score += BonusPerExtraSource * float64(extra)
	}
	if mixedTiers(c) {
		score += BonusMixedTiers
	}

	shares := make([]float64, len(bases))
	if sumBases > 0 {
		for i, b := range bases {
			shares[i] = b / sumBases
		}
	} else if len(bases) > 0 {
		// All-zero-trust cluster: split evenly so the bonuses still flow.
		for i := range shares {
			shares[i] = 1.0 / float64(len(shares))
		}
	}

	return Result{Included: true, Score: score, Bases: bases, Shares: shares}
}

// mixedTiers reports whether the cluster pairs an authority or corporate
// signal with generalist coverage.
func mixedTiers(c domain.Cluster) bool {
	highTrust := c.TierCount(domain.TierAuthority) > 0 || c.TierCount(domain.TierCorporate) > 0
	return highTrust && c.TierCount(domain.TierGeneralist) > 0
}

func creditedCorporate(c domain.Cluster, trust TrustLookup) int {
	best := -1
	for i, s := range c.Segments {
		if s.Tier != domain.TierCorporate {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		bt, it := trust(c.Segments[best].SourceID), trust(s.SourceID)
		if it > bt || (it == bt && s.ID < c.Segments[best].ID) {
			best = i
		}
	}
	return best
}
