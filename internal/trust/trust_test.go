package trust

import (
	"math"
	"testing"

	"DigestEngine/internal/domain"
)

func TestComputeExtremes(t *testing.T) {
	t.Parallel()

	if got := (Factors{Retention: 1, LeadTime: 1, SignalToNoise: 1}).Compute(); got != 100 {
		t.Fatalf("all-one factors: got %v, want 100", got)
	}
	if got := (Factors{}).Compute(); got != 0 {
		t.Fatalf("all-zero factors: got %v, want 0", got)
	}
}

func TestComputeWeighting(t *testing.T) {
	t.Parallel()

	// Retention alone carries half the score.
	if got := (Factors{Retention: 1}).Compute(); got != 50 {
		t.Fatalf("retention-only: got %v, want 50", got)
	}
	if got := (Factors{LeadTime: 1}).Compute(); got != 25 {
		t.Fatalf("lead-time-only: got %v, want 25", got)
	}
	if got := (Factors{SignalToNoise: 1}).Compute(); got != 25 {
		t.Fatalf("snr-only: got %v, want 25", got)
	}
}

func TestComputePanicsOnInvalidFactor(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for factor outside [0,1]")
		}
	}()
	_ = (Factors{Retention: 1.5}).Compute()
}

func TestLeadWindowReward(t *testing.T) {
	t.Parallel()

	w := DefaultLeadWindow()

	cases := []struct {
		lead float64
		want float64
	}{
		{0, 0},
		{7.5, 0.5},
		{15, 1.0},
		{31.5, 0.5},
		{48, 0},
		{100, 0},
		{-3, 0},
	}
	for _, tc := range cases {
		if got := w.Reward(tc.lead); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("reward at %vh: got %v, want %v", tc.lead, got, tc.want)
		}
	}
}

func TestCapStep(t *testing.T) {
	t.Parallel()

	if got := CapStep(50, 100, 15); got != 65 {
		t.Fatalf("upward step: got %v, want 65", got)
	}
	if got := CapStep(50, 0, 15); got != 35 {
		t.Fatalf("downward step: got %v, want 35", got)
	}
	if got := CapStep(50, 55, 15); got != 55 {
		t.Fatalf("within-cap step: got %v, want 55", got)
	}
	if got := CapStep(5, -50, 15); got != 0 {
		t.Fatalf("floor clamp: got %v, want 0", got)
	}
	if got := CapStep(95, 200, 15); got != 100 {
		t.Fatalf("ceiling clamp: got %v, want 100", got)
	}
}

func TestFactorsFromWindow(t *testing.T) {
	t.Parallel()

	src := domain.Source{ID: "s", LeadTimeHours: 15}
	for i := 0; i < 10; i++ {
		src.RecordOutcome(domain.PublicationOutcome{
			SegmentID:    "seg",
			Selected:     i < 5,
			Retention:    0.8,
			HasRetention: true,
		})
	}

	f := FactorsFrom(src, DefaultLeadWindow())
	if math.Abs(f.Retention-0.8) > 1e-9 {
		t.Fatalf("retention: got %v, want 0.8", f.Retention)
	}
	if math.Abs(f.SignalToNoise-0.5) > 1e-9 {
		t.Fatalf("snr: got %v, want 0.5", f.SignalToNoise)
	}
	if f.LeadTime != 1.0 {
		t.Fatalf("lead time: got %v, want 1.0", f.LeadTime)
	}
}

func TestFactorsFromEmptyWindowIsNeutral(t *testing.T) {
	t.Parallel()

	f := FactorsFrom(domain.Source{ID: "new"}, DefaultLeadWindow())
	if f.Retention != 0.5 || f.LeadTime != 0.5 || f.SignalToNoise != 0.5 {
		t.Fatalf("new source should see neutral factors, got %+v", f)
	}
}

func TestFactorsSkipUnobservedRetention(t *testing.T) {
	t.Parallel()

	src := domain.Source{ID: "s"}
	src.RecordOutcome(domain.PublicationOutcome{SegmentID: "a", Selected: true})
	src.RecordOutcome(domain.PublicationOutcome{SegmentID: "b", Selected: true, Retention: 1.0, HasRetention: true})

	f := FactorsFrom(src, DefaultLeadWindow())
	if f.Retention != 1.0 {
		t.Fatalf("unobserved retention must not drag the average, got %v", f.Retention)
	}
}

func TestRollingWindowCap(t *testing.T) {
	t.Parallel()

	var src domain.Source
	for i := 0; i < domain.OutcomeWindowSize+10; i++ {
		src.RecordOutcome(domain.PublicationOutcome{SegmentID: "x", Selected: i >= 10})
	}
	if len(src.Outcomes) != domain.OutcomeWindowSize {
		t.Fatalf("window length: got %d, want %d", len(src.Outcomes), domain.OutcomeWindowSize)
	}
	// The first 10 (unselected) entries were evicted.
	f := FactorsFrom(src, DefaultLeadWindow())
	if f.SignalToNoise != 1.0 {
		t.Fatalf("snr after eviction: got %v, want 1.0", f.SignalToNoise)
	}
}
