package cluster

import (
	"math"
	"testing"
	"time"

	"DigestEngine/internal/domain"
)

func TestAssemblePoolNormalizesRelevance(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	trust := map[string]float64{"auth": 80, "gen": 40}

	segments := []domain.Segment{
		{ID: "s1", TopicID: "ai", SourceID: "auth", Tier: domain.TierAuthority, Relevance: 0.9},
		{ID: "s2", TopicID: "ai", SourceID: "gen", Tier: domain.TierGeneralist, Relevance: 0.4},
	}

	pool, excluded := AssemblePool(day, segments, func(id string) float64 { return trust[id] })
	if excluded != 0 {
		t.Fatalf("expected no exclusions, got %d", excluded)
	}
	if len(pool.Segments) != 2 {
		t.Fatalf("expected 2 pool segments, got %d", len(pool.Segments))
	}

	// The top segment's relevance normalizes to exactly 1.0.
	maxRel := 0.0
	for _, seg := range pool.Segments {
		if seg.Relevance < 0 || seg.Relevance > 1 {
			t.Fatalf("relevance %v outside [0,1]", seg.Relevance)
		}
		if seg.Relevance > maxRel {
			maxRel = seg.Relevance
		}
	}
	if math.Abs(maxRel-1.0) > 1e-9 {
		t.Fatalf("max relevance should normalize to 1.0, got %v", maxRel)
	}

	// Raw relevance survives the overwrite.
	for _, seg := range pool.Segments {
		switch seg.ID {
		case "s1":
			if seg.RawRelevance != 0.9 {
				t.Fatalf("s1 raw relevance: got %v", seg.RawRelevance)
			}
		case "s2":
			if seg.RawRelevance != 0.4 {
				t.Fatalf("s2 raw relevance: got %v", seg.RawRelevance)
			}
		}
	}
}

func TestAssemblePoolDropsGatedClusters(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	segments := []domain.Segment{
		{ID: "s1", TopicID: "ai", SourceID: "auth", Tier: domain.TierAuthority},
		{ID: "s2", TopicID: "gossip", SourceID: "g1", Tier: domain.TierGeneralist},
		{ID: "s3", TopicID: "gossip", SourceID: "g2", Tier: domain.TierGeneralist},
	}

	pool, excluded := AssemblePool(day, segments, func(string) float64 { return 50 })
	if excluded != 1 {
		t.Fatalf("expected 1 excluded cluster, got %d", excluded)
	}
	if len(pool.Segments) != 1 || pool.Segments[0].ID != "s1" {
		t.Fatalf("only the authority cluster should survive, got %+v", pool.Segments)
	}
}

func TestAssemblePoolOrderingPreserved(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	trust := map[string]float64{"a1": 90, "a2": 30}

	// Two single-segment authority clusters; normalization must not
	// change which one ranks higher.
	segments := []domain.Segment{
		{ID: "hi", TopicID: "t1", SourceID: "a1", Tier: domain.TierAuthority},
		{ID: "lo", TopicID: "t2", SourceID: "a2", Tier: domain.TierAuthority},
	}

	pool, _ := AssemblePool(day, segments, func(id string) float64 { return trust[id] })

	rel := map[string]float64{}
	for _, seg := range pool.Segments {
		rel[seg.ID] = seg.Relevance
	}
	if rel["hi"] <= rel["lo"] {
		t.Fatalf("normalization changed ordering: hi=%v lo=%v", rel["hi"], rel["lo"])
	}
}
