package domain

import "time"

// DefaultTopicWeight applies to any topic the user has not set.
const DefaultTopicWeight = 50

// UserWeights maps topic identifiers to integer weights in [0,100].
// Read-only to the scoring engine; mutated externally by preference actions.
type UserWeights map[string]int

// Weight resolves a topic weight, defaulting unset topics to 50.
func (w UserWeights) Weight(topicID string) int {
	if w == nil {
		return DefaultTopicWeight
	}
	if v, ok := w[topicID]; ok {
		return v
	}
	return DefaultTopicWeight
}

// Ignored reports whether the user has explicitly zeroed the topic.
func (w UserWeights) Ignored(topicID string) bool {
	return w.Weight(topicID) == 0
}

// ScoreBreakdown explains how one segment's final score was assembled.
// Persisted alongside the playlist for audit; never affects ranking.
type ScoreBreakdown struct {
	SegmentID string
	Relevance float64
	Weight    int
	Decay     float64
	Final     float64
	Wildcard  bool
}

// Playlist is the ordered selection for one user and one calendar date.
type Playlist struct {
	ID         string
	UserID     string
	Date       time.Time
	SegmentIDs []string
	Breakdowns []ScoreBreakdown
	CreatedAt  time.Time
}
