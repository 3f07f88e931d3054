// Package freshness maps content timestamps to age-decay multipliers.
// Everything here is pure and referentially transparent.
package freshness

import (
	"fmt"
	"time"

	"DigestEngine/internal/domain"
)

// DefaultMaxAgeDays is how old a segment may be before it is dropped
// from scoring entirely.
const DefaultMaxAgeDays = 7

// AgeDays returns the integer calendar-day difference between the
// reference date and the creation date. Future-dated content clamps to 0.
func AgeDays(createdAt, reference time.Time) int {
	cy, cm, cd := createdAt.Date()
	ry, rm, rd := reference.Date()
	created := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	ref := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)

	days := int(ref.Sub(created).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Decay returns the freshness multiplier 1/(1+age): today 1.0,
// one day old 0.5, seven days old 0.125.
func Decay(createdAt, reference time.Time) float64 {
	d := 1.0 / (1.0 + float64(AgeDays(createdAt, reference)))
	if d <= 0 || d > 1 {
		panic(fmt.Sprintf("freshness: decay %v outside (0,1]", d))
	}
	return d
}

// IsExpired reports whether the segment is strictly older than
// maxAgeDays. Age equal to maxAgeDays is still fresh.
func IsExpired(createdAt, reference time.Time, maxAgeDays int) bool {
	return AgeDays(createdAt, reference) > maxAgeDays
}

// FilterExpired removes expired segments from the pool and reports how
// many were dropped.
func FilterExpired(segments []domain.Segment, reference time.Time, maxAgeDays int) ([]domain.Segment, int) {
	kept := make([]domain.Segment, 0, len(segments))
	removed := 0
	for _, s := range segments {
		if IsExpired(s.CreatedAt, reference, maxAgeDays) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	return kept, removed
}
