package cluster

import (
	"math"
	"testing"

	"DigestEngine/internal/domain"
)

func flatTrust(score float64) TrustLookup {
	return func(string) float64 { return score }
}

func seg(id, source string, tier domain.Tier) domain.Segment {
	return domain.Segment{ID: id, TopicID: "topic", SourceID: source, Tier: tier}
}

func TestGateRequiresAuthorityOrGeneralistQuorum(t *testing.T) {
	t.Parallel()

	// Four distinct generalists, no authority: excluded no matter the trust.
	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "g1", domain.TierGeneralist),
		seg("s2", "g2", domain.TierGeneralist),
		seg("s3", "g3", domain.TierGeneralist),
		seg("s4", "g4", domain.TierGeneralist),
	}}
	if res := Score(c, flatTrust(100)); res.Included {
		t.Fatal("cluster without authority and under generalist quorum must be excluded")
	}

	c.Segments = append(c.Segments, seg("s5", "g5", domain.TierGeneralist))
	if res := Score(c, flatTrust(1)); !res.Included {
		t.Fatal("five distinct generalists must pass the gate regardless of score")
	}
}

func TestGateSingleAuthority(t *testing.T) {
	t.Parallel()

	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "a1", domain.TierAuthority),
	}}
	if res := Score(c, flatTrust(0)); !res.Included {
		t.Fatal("a single authority segment must pass the gate")
	}
}

func TestGateCorporateOnlyExcluded(t *testing.T) {
	t.Parallel()

	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "c1", domain.TierCorporate),
		seg("s2", "c2", domain.TierCorporate),
	}}
	if res := Score(c, flatTrust(100)); res.Included {
		t.Fatal("corporate-only cluster must not pass the gate")
	}
}

func TestCorporateMultiplierCreditedOnce(t *testing.T) {
	t.Parallel()

	trust := map[string]float64{"auth": 50, "corpA": 80, "corpB": 60}
	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "auth", domain.TierAuthority),
		seg("s2", "corpA", domain.TierCorporate),
		seg("s3", "corpB", domain.TierCorporate),
	}}

	res := Score(c, func(id string) float64 { return trust[id] })
	if !res.Included {
		t.Fatal("cluster with authority must be included")
	}

	// auth 50×2.0=100; corpA (highest-trust corporate) 80×1.5=120;
	// corpB falls back to 1.0 → 60. Plus 2 extra sources ×20 = 40.
	wantBases := []float64{100, 120, 60}
	for i, want := range wantBases {
		if math.Abs(res.Bases[i]-want) > 1e-9 {
			t.Fatalf("base[%d]: got %v, want %v", i, res.Bases[i], want)
		}
	}
	if want := 100.0 + 120 + 60 + 40; math.Abs(res.Score-want) > 1e-9 {
		t.Fatalf("score: got %v, want %v", res.Score, want)
	}
}

func TestMixedTierBonus(t *testing.T) {
	t.Parallel()

	trust := map[string]float64{"auth": 50, "gen": 40}
	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "auth", domain.TierAuthority),
		seg("s2", "gen", domain.TierGeneralist),
	}}

	res := Score(c, func(id string) float64 { return trust[id] })
	// 50×2 + 40×1 + 20 (extra source) + 50 (radar confirmed by loupe).
	if want := 210.0; res.Score != want {
		t.Fatalf("score: got %v, want %v", res.Score, want)
	}
}

func TestSharesProportionalToBase(t *testing.T) {
	t.Parallel()

	trust := map[string]float64{"auth": 60, "gen": 30}
	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "auth", domain.TierAuthority),
		seg("s2", "gen", domain.TierGeneralist),
	}}

	res := Score(c, func(id string) float64 { return trust[id] })
	// Bases 120 and 30; shares 0.8 and 0.2.
	if math.Abs(res.Shares[0]-0.8) > 1e-9 || math.Abs(res.Shares[1]-0.2) > 1e-9 {
		t.Fatalf("shares: got %v", res.Shares)
	}
	if sum := res.Shares[0] + res.Shares[1]; math.Abs(sum-1) > 1e-9 {
		t.Fatalf("shares must sum to 1, got %v", sum)
	}
}

func TestZeroTrustClusterSplitsEvenly(t *testing.T) {
	t.Parallel()

	c := domain.Cluster{TopicID: "topic", Segments: []domain.Segment{
		seg("s1", "a1", domain.TierAuthority),
		seg("s2", "g1", domain.TierGeneralist),
	}}

	res := Score(c, flatTrust(0))
	if !res.Included {
		t.Fatal("gate does not depend on trust")
	}
	if res.Shares[0] != 0.5 || res.Shares[1] != 0.5 {
		t.Fatalf("zero-base cluster should split evenly, got %v", res.Shares)
	}
	// Bonuses still count: 20 for the extra source, 50 for the tier mix.
	if res.Score != 70 {
		t.Fatalf("score: got %v, want 70", res.Score)
	}
}
