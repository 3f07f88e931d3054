// Package playlist turns a scored daily pool into a fixed-size, ordered,
// per-user selection, reserving one slot for a diversity wildcard drawn
// from topics the user has zeroed out.
package playlist

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/scoring"
)

// DefaultTargetCount is the playlist length when the pool allows it.
const DefaultTargetCount = 15

// The wildcard lands somewhere in the middle band of the playlist,
// 1-indexed inclusive, so it is neither the opener nor the closer.
const (
	wildcardBandLo = 5
	wildcardBandHi = 12
)

// Selection is an ordered playlist candidate with its explainability
// breakdowns, aligned index-for-index with SegmentIDs.
type Selection struct {
	SegmentIDs []string
	Breakdowns []domain.ScoreBreakdown
	WildcardID string // empty when no wildcard was injected
}

// Selector assembles playlists. The random source only positions the
// wildcard; inject a seeded one for reproducible runs.
type Selector struct {
	targetCount int
	rng         *rand.Rand
}

// NewSelector builds a selector. A zero targetCount means the default;
// a nil rng gets a time-seeded source.
func NewSelector(targetCount int, rng *rand.Rand) *Selector {
	if targetCount <= 0 {
		targetCount = DefaultTargetCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{targetCount: targetCount, rng: rng}
}

// Select runs the N+1 algorithm over the pool for one user.
//
// Empty pool: empty selection, not an error. All pool topics explicitly
// weighted zero: weighting is bypassed and the top segments by raw
// relevance are returned. Otherwise the top targetCount-1 by final score
// are taken and the remaining slot goes to the best raw-relevance segment
// from an ignored topic, inserted at a random mid-band position; with no
// such candidate the next main-ranking segment fills the slot instead.
func (s *Selector) Select(pool domain.ScoredPool, weights domain.UserWeights, reference time.Time) Selection {
	if len(pool.Segments) == 0 {
		return Selection{}
	}
	assertUniqueIDs(pool.Segments)

	if allTopicsZeroed(pool.Segments, weights) {
		return s.rawFallback(pool.Segments, reference)
	}

	ranked := make([]domain.ScoreBreakdown, len(pool.Segments))
	byID := make(map[string]domain.ScoredSegment, len(pool.Segments))
	for i, seg := range pool.Segments {
		ranked[i] = scoring.Final(seg, weights, reference)
		byID[seg.ID] = seg
	}
	sortRanked(ranked, byID)

	mainN := s.targetCount - 1
	if mainN > len(ranked) {
		mainN = len(ranked)
	}
	main := ranked[:mainN]

	chosen := make(map[string]bool, mainN)
	for _, b := range main {
		chosen[b.SegmentID] = true
	}

	wildcard, ok := pickWildcard(pool.Segments, weights, chosen)
	if !ok {
		// No ignored-topic candidate left: the slot reverts to the
		// next segment in the main ranking.
		if len(ranked) > mainN {
			main = ranked[:mainN+1]
		}
		return toSelection(main, "")
	}

	wb := scoring.Final(wildcard, weights, reference)
	wb.Wildcard = true
	return s.inject(main, wb)
}

// rawFallback ignores weights entirely and ranks by raw relevance, so a
// user who zeroed every topic still receives a playlist.
func (s *Selector) rawFallback(segments []domain.ScoredSegment, reference time.Time) Selection {
	ranked := make([]domain.ScoreBreakdown, len(segments))
	byID := make(map[string]domain.ScoredSegment, len(segments))
	for i, seg := range segments {
		ranked[i] = domain.ScoreBreakdown{
			SegmentID: seg.ID,
			Relevance: seg.RawRelevance,
			Decay:     1,
			Final:     seg.RawRelevance, // ranking key in fallback mode
		}
		byID[seg.ID] = seg
	}
	sortRanked(ranked, byID)

	if len(ranked) > s.targetCount {
		ranked = ranked[:s.targetCount]
	}
	return toSelection(ranked, "")
}

// inject places the wildcard at a uniformly random 1-indexed position
// within the middle band, clamped to the playlist length.
func (s *Selector) inject(main []domain.ScoreBreakdown, wildcard domain.ScoreBreakdown) Selection {
	size := len(main) + 1
	lo, hi := wildcardBandLo, wildcardBandHi
	if hi > size {
		hi = size
	}
	if lo > hi {
		lo = hi
	}
	pos := lo + s.rng.Intn(hi-lo+1) // 1-indexed

	out := make([]domain.ScoreBreakdown, 0, size)
	out = append(out, main[:pos-1]...)
	out = append(out, wildcard)
	out = append(out, main[pos-1:]...)
	return toSelection(out, wildcard.SegmentID)
}

// allTopicsZeroed is true only when every distinct topic present in the
// pool carries an explicit zero weight; unset topics default to 50 and
// so keep normal weighting in play.
func allTopicsZeroed(segments []domain.ScoredSegment, weights domain.UserWeights) bool {
	for _, seg := range segments {
		if weights.Weight(seg.TopicID) != 0 {
			return false
		}
	}
	return true
}

// pickWildcard finds the unselected segment with the highest raw
// relevance among topics the user explicitly weighted zero.
func pickWildcard(segments []domain.ScoredSegment, weights domain.UserWeights, chosen map[string]bool) (domain.ScoredSegment, bool) {
	var best domain.ScoredSegment
	found := false
	for _, seg := range segments {
		if !weights.Ignored(seg.TopicID) || chosen[seg.ID] {
			continue
		}
		if !found || betterRaw(seg, best) {
			best = seg
			found = true
		}
	}
	return best, found
}

func betterRaw(a, b domain.ScoredSegment) bool {
	if a.RawRelevance != b.RawRelevance {
		return a.RawRelevance > b.RawRelevance
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// sortRanked orders descending by final score, then newer CreatedAt,
// then ascending id, so selection is reproducible.
func sortRanked(ranked []domain.ScoreBreakdown, byID map[string]domain.ScoredSegment) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Final != b.Final {
			return a.Final > b.Final
		}
		at, bt := byID[a.SegmentID].CreatedAt, byID[b.SegmentID].CreatedAt
		if !at.Equal(bt) {
			return at.After(bt)
		}
		return a.SegmentID < b.SegmentID
	})
}

func toSelection(breakdowns []domain.ScoreBreakdown, wildcardID string) Selection {
	sel := Selection{
		SegmentIDs: make([]string, len(breakdowns)),
		Breakdowns: breakdowns,
		WildcardID: wildcardID,
	}
	for i, b := range breakdowns {
		sel.SegmentIDs[i] = b.SegmentID
	}
	return sel
}

// assertUniqueIDs guards the selector's no-duplicates invariant at the
// boundary; a duplicated pool is an upstream programming error.
func assertUniqueIDs(segments []domain.ScoredSegment) {
	seen := make(map[string]bool, len(segments))
	for _, seg := range segments {
		if seen[seg.ID] {
			panic(fmt.Sprintf("playlist: duplicate segment id %q in pool", seg.ID))
		}
		seen[seg.ID] = true
	}
}
