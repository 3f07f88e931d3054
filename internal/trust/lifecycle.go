package trust

import "DigestEngine/internal/domain"

// Policy parameterizes the lifecycle state machine.
type Policy struct {
	// LowThreshold is the trust score below which a source accumulates
	// strikes toward probation and quarantine.
	LowThreshold float64
	// ProbationAfter is how many consecutive below-threshold cycles an
	// active source survives before entering probation.
	ProbationAfter int
	// RedemptionCadence is how many cycles apart a quarantined source is
	// re-evaluated for redemption.
	RedemptionCadence int
	// MaxStepPerCycle bounds the trust-score delta per recompute.
	MaxStepPerCycle float64
}

// DefaultPolicy mirrors production tuning.
func DefaultPolicy() Policy {
	return Policy{
		LowThreshold:      20,
		ProbationAfter:    2,
		RedemptionCadence: 3,
		MaxStepPerCycle:   15,
	}
}

// Transition is the pure lifecycle step: given the current state, the
// freshly computed trust score, and the strike/cadence counters, it
// returns the next state and the updated strike counter.
//
//	active      -> probation   after ProbationAfter consecutive low cycles
//	probation   -> quarantined after one further low cycle
//	probation   -> active      once the score recovers
//	quarantined -> active      ("redemption") when a reduced-cadence trial
//	                           clears the threshold
func Transition(state domain.SourceState, score float64, belowCycles, cyclesInState int, p Policy) (domain.SourceState, int) {
	below := score < p.LowThreshold

	switch state {
	case domain.SourceActive:
		if !below {
			return domain.SourceActive, 0
		}
		belowCycles++
		if belowCycles >= p.ProbationAfter {
			return domain.SourceProbation, belowCycles
		}
		return domain.SourceActive, belowCycles

	case domain.SourceProbation:
		if below {
			return domain.SourceQuarantined, belowCycles + 1
		}
		return domain.SourceActive, 0

	case domain.SourceQuarantined:
		// Reduced cadence: only every RedemptionCadence-th cycle is a trial.
		if p.RedemptionCadence > 1 && (cyclesInState+1)%p.RedemptionCadence != 0 {
			return domain.SourceQuarantined, belowCycles
		}
		if !below {
			return domain.SourceActive, 0
		}
		return domain.SourceQuarantined, belowCycles

	default:
		return domain.SourceActive, 0
	}
}

// Recompute runs one full trust cycle for a source: factor extraction,
// weighted scoring, step capping, and the lifecycle transition. It is the
// only code path allowed to mutate a source's trust score.
func Recompute(src domain.Source, window LeadWindow, p Policy) domain.Source {
	target := FactorsFrom(src, window).Compute()
	src.TrustScore = CapStep(src.TrustScore, target, p.MaxStepPerCycle)

	next, strikes := Transition(src.State, src.TrustScore, src.BelowCycles, src.CyclesInState, p)
	if next != src.State {
		src.CyclesInState = 0
	} else {
		src.CyclesInState++
	}
	src.State = next
	src.BelowCycles = strikes

	return src
}
