package trust

import (
	"testing"

	"DigestEngine/internal/domain"
)

func TestActiveToProbationTakesTwoLowCycles(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	state, strikes := Transition(domain.SourceActive, 10, 0, 0, p)
	if state != domain.SourceActive || strikes != 1 {
		t.Fatalf("after first low cycle: got %s/%d, want active/1", state, strikes)
	}

	state, strikes = Transition(state, 10, strikes, 1, p)
	if state != domain.SourceProbation {
		t.Fatalf("after second low cycle: got %s, want probation", state)
	}
}

func TestActiveRecoveryResetsStrikes(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	state, strikes := Transition(domain.SourceActive, 10, 1, 0, p)
	if state != domain.SourceProbation {
		t.Fatalf("got %s, want probation", state)
	}

	state, strikes = Transition(domain.SourceActive, 80, 1, 0, p)
	if state != domain.SourceActive || strikes != 0 {
		t.Fatalf("recovery: got %s/%d, want active/0", state, strikes)
	}
}

func TestProbationToQuarantine(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	state, _ := Transition(domain.SourceProbation, 10, 2, 0, p)
	if state != domain.SourceQuarantined {
		t.Fatalf("got %s, want quarantined", state)
	}
}

func TestProbationRecovers(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	state, strikes := Transition(domain.SourceProbation, 40, 2, 0, p)
	if state != domain.SourceActive || strikes != 0 {
		t.Fatalf("got %s/%d, want active/0", state, strikes)
	}
}

func TestQuarantineRedemptionCadence(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy() // cadence 3

	// Cycles 1 and 2 in quarantine are not trials even with a good score.
	state, _ := Transition(domain.SourceQuarantined, 90, 3, 0, p)
	if state != domain.SourceQuarantined {
		t.Fatalf("cycle 1: got %s, want quarantined", state)
	}
	state, _ = Transition(domain.SourceQuarantined, 90, 3, 1, p)
	if state != domain.SourceQuarantined {
		t.Fatalf("cycle 2: got %s, want quarantined", state)
	}

	// The third cycle is a trial; a clearing score redeems the source.
	state, strikes := Transition(domain.SourceQuarantined, 90, 3, 2, p)
	if state != domain.SourceActive || strikes != 0 {
		t.Fatalf("trial: got %s/%d, want active/0", state, strikes)
	}

	// A failed trial keeps the source quarantined.
	state, _ = Transition(domain.SourceQuarantined, 5, 3, 2, p)
	if state != domain.SourceQuarantined {
		t.Fatalf("failed trial: got %s, want quarantined", state)
	}
}

func TestRecomputeCapsTrustMovement(t *testing.T) {
	t.Parallel()

	src := domain.Source{ID: "s", TrustScore: 50, State: domain.SourceActive}
	for i := 0; i < 10; i++ {
		src.RecordOutcome(domain.PublicationOutcome{Selected: true, Retention: 1, HasRetention: true})
	}
	src.LeadTimeHours = 15

	// Raw target would be 100; one cycle moves at most MaxStepPerCycle.
	got := Recompute(src, DefaultLeadWindow(), DefaultPolicy())
	if got.TrustScore != 65 {
		t.Fatalf("capped trust: got %v, want 65", got.TrustScore)
	}
	if got.State != domain.SourceActive {
		t.Fatalf("state: got %s, want active", got.State)
	}
}

func TestRecomputeWalksIntoQuarantine(t *testing.T) {
	t.Parallel()

	src := domain.Source{ID: "s", TrustScore: 30, State: domain.SourceActive}
	for i := 0; i < 10; i++ {
		src.RecordOutcome(domain.PublicationOutcome{Selected: false, Retention: 0, HasRetention: true})
	}

	w, p := DefaultLeadWindow(), DefaultPolicy()
	states := []domain.SourceState{}
	for i := 0; i < 4; i++ {
		src = Recompute(src, w, p)
		states = append(states, src.State)
	}

	// Target score is 12.5 (neutral lead only). Trust walks 30 → 15
	// (strike one) → 12.5 (strike two, probation) → still low, quarantined.
	want := []domain.SourceState{
		domain.SourceActive,
		domain.SourceProbation,
		domain.SourceQuarantined,
		domain.SourceQuarantined,
	}
	for i, s := range want {
		if states[i] != s {
			t.Fatalf("cycle %d: got %s, want %s (full walk %v)", i+1, states[i], s, states)
		}
	}
	if src.TrustScore != 12.5 {
		t.Fatalf("trust should settle at the 12.5 target, got %v", src.TrustScore)
	}
}
