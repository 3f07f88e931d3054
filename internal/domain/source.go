package domain

import "time"

// SourceState is the lifecycle state of a publishing source.
type SourceState string

const (
	SourceActive      SourceState = "active"
	SourceProbation   SourceState = "probation"
	SourceQuarantined SourceState = "quarantined"
)

// OutcomeWindowSize bounds the rolling window of publication outcomes.
const OutcomeWindowSize = 30

// PublicationOutcome records what happened to one published segment.
// Selection is known at scoring time; retention arrives later from the
// playback feedback loop.
type PublicationOutcome struct {
	SegmentID    string
	Selected     bool    // included in any cluster/playlist
	Retention    float64 // fraction of listeners consuming >75% of duration, [0,1]
	HasRetention bool    // false until playback feedback arrives
}

// Source is a publisher with a persistent trust score and lifecycle state.
// Created on first ingestion from a new publisher; never deleted, only
// state-transitioned. The trust score is mutated only by the trust store.
type Source struct {
	ID            string
	Tier          Tier
	TrustScore    float64 // [0,100]
	State         SourceState
	Outcomes      []PublicationOutcome // rolling, newest last, capped at OutcomeWindowSize
	LeadTimeHours float64              // last observed publish lead ahead of cluster formation
	BelowCycles   int                  // consecutive recompute cycles below the low threshold
	CyclesInState int                  // recompute cycles since the last state change
	UpdatedAt     time.Time
}

// RecordOutcome appends to the rolling window, evicting the oldest entry
// once the window is full.
func (s *Source) RecordOutcome(o PublicationOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	if len(s.Outcomes) > OutcomeWindowSize {
		s.Outcomes = s.Outcomes[len(s.Outcomes)-OutcomeWindowSize:]
	}
}
