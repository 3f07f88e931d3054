package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"DigestEngine/internal/cluster"
	"DigestEngine/internal/domain"
	"DigestEngine/internal/freshness"
	"DigestEngine/internal/playlist"
	"DigestEngine/internal/ports"
	"DigestEngine/internal/scoring"
	"DigestEngine/internal/trust"
)

// Params carries the engine's tunable scoring and selection parameters.
type Params struct {
	MaxAgeDays  int
	TargetCount int
	Workers     int
	Policy      trust.Policy
	LeadWindow  trust.LeadWindow
}

// DefaultParams mirrors the config defaults.
func DefaultParams() Params {
	return Params{
		MaxAgeDays:  freshness.DefaultMaxAgeDays,
		TargetCount: playlist.DefaultTargetCount,
		Workers:     8,
		Policy:      trust.DefaultPolicy(),
		LeadWindow:  trust.DefaultLeadWindow(),
	}
}

// EngineDeps wires all driven adapters into the scoring engine.
type EngineDeps struct {
	Source      ports.SegmentSource
	Evaluator   ports.QualityEvaluator
	Sources     ports.SourceRepository
	Pools       ports.PoolRepository
	Weights     ports.WeightsRepository
	Playlists   ports.PlaylistRepository
	Logger      *slog.Logger
	Params      Params
	NewSelector func() *playlist.Selector
}

// Engine implements the daily scoring and selection workflow: trust
// recompute, pool scoring, and per-user playlist assembly.
type Engine struct {
	source      ports.SegmentSource
	evaluator   ports.QualityEvaluator
	sources     ports.SourceRepository
	pools       ports.PoolRepository
	weights     ports.WeightsRepository
	playlists   ports.PlaylistRepository
	logger      *slog.Logger
	params      Params
	newSelector func() *playlist.Selector

	// trustMu serializes trust-store writes; readers work on snapshots.
	trustMu sync.Mutex
}

// NewEngine constructs the orchestration component.
func NewEngine(deps EngineDeps) *Engine {
	if deps.Params.TargetCount <= 0 {
		deps.Params = DefaultParams()
	}
	if deps.NewSelector == nil {
		target := deps.Params.TargetCount
		deps.NewSelector = func() *playlist.Selector {
			return playlist.NewSelector(target, nil)
		}
	}
	return &Engine{
		source:      deps.Source,
		evaluator:   deps.Evaluator,
		sources:     deps.Sources,
		pools:       deps.Pools,
		weights:     deps.Weights,
		playlists:   deps.Playlists,
		logger:      deps.Logger,
		params:      deps.Params,
		newSelector: deps.NewSelector,
	}
}

// ComputeDailyScores ingests the day's segments, deduplicates them,
// drops expired content and quarantined publishers, scores the topic
// clusters, and persists the resulting pool.
func (e *Engine) ComputeDailyScores(ctx context.Context, day time.Time) (domain.ScoredPool, error) {
	if e.source == nil {
		return domain.ScoredPool{Date: day}, nil
	}

	segments, err := e.source.FetchDaily(ctx, day)
	if err != nil {
		return domain.ScoredPool{}, fmt.Errorf("fetch daily segments: %w", err)
	}

	segments = dedupeByID(segments)

	segments, expired := freshness.FilterExpired(segments, day, e.params.MaxAgeDays)
	if expired > 0 {
		e.info("expired segments dropped", "count", expired, "day", day.Format("2006-01-02"))
	}

	trustBySource, err := e.registerAndIndexSources(ctx, segments)
	if err != nil {
		return domain.ScoredPool{}, err
	}

	segments, quarantined := e.dropQuarantined(segments, trustBySource)
	if quarantined > 0 {
		e.info("quarantined-source segments dropped", "count", quarantined)
	}

	segments = e.fillMissingRelevance(ctx, segments)

	pool, excluded := cluster.AssemblePool(day, segments, func(sourceID string) float64 {
		if src, ok := trustBySource[sourceID]; ok {
			return src.TrustScore
		}
		return 0
	})
	if excluded > 0 {
		e.info("clusters excluded by gate", "count", excluded)
	}

	if err := e.recordSelectionOutcomes(ctx, segments, pool, trustBySource); err != nil {
		return domain.ScoredPool{}, err
	}

	if e.pools != nil {
		if err := e.pools.SavePool(ctx, pool); err != nil {
			return domain.ScoredPool{}, fmt.Errorf("persist pool: %w", err)
		}
	}

	e.info("daily pool scored", "day", day.Format("2006-01-02"), "segments", len(pool.Segments))
	return pool, nil
}

// RecomputeSourceTrust runs one trust cycle over every known source.
// It is the single writer of trust scores and lifecycle states.
func (e *Engine) RecomputeSourceTrust(ctx context.Context) ([]domain.Source, error) {
	if e.sources == nil {
		return nil, nil
	}

	e.trustMu.Lock()
	defer e.trustMu.Unlock()

	sources, err := e.sources.LoadSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	updated := make([]domain.Source, 0, len(sources))
	for _, src := range sources {
		before := src.State
		src = trust.Recompute(src, e.params.LeadWindow, e.params.Policy)
		src.UpdatedAt = time.Now().UTC()

		if src.State != before {
			e.info("source state changed", "source", src.ID, "from", before, "to", src.State,
				"trust", src.TrustScore)
		}
		if err := e.sources.SaveSource(ctx, src); err != nil {
			return nil, fmt.Errorf("save source %s: %w", src.ID, err)
		}
		updated = append(updated, src)
	}

	e.info("trust recompute done", "sources", len(updated))
	return updated, nil
}

// SelectPlaylist assembles and persists one user's playlist for a date.
func (e *Engine) SelectPlaylist(ctx context.Context, userID string, day time.Time) (domain.Playlist, error) {
	pool, err := e.loadPool(ctx, day)
	if err != nil {
		return domain.Playlist{}, err
	}
	return e.selectFromPool(ctx, userID, day, pool)
}

// SelectAllPlaylists fans playlist selection out over every known user.
// Each worker reads the same immutable pool snapshot; selection is
// stateless, so users are processed concurrently.
func (e *Engine) SelectAllPlaylists(ctx context.Context, day time.Time) (int, error) {
	if e.weights == nil {
		return 0, nil
	}

	users, err := e.weights.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return 0, nil
	}

	pool, err := e.loadPool(ctx, day)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := e.params.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			if _, err := e.selectFromPool(gctx, userID, day, pool); err != nil {
				return fmt.Errorf("user %s: %w", userID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	e.info("playlists selected", "day", day.Format("2006-01-02"), "users", len(users))
	return len(users), nil
}

// ProcessDay is the scheduled daily batch: trust recompute, pool
// scoring, then playlist selection for every user.
func (e *Engine) ProcessDay(ctx context.Context, day time.Time) error {
	if _, err := e.RecomputeSourceTrust(ctx); err != nil {
		return fmt.Errorf("recompute trust: %w", err)
	}
	if _, err := e.ComputeDailyScores(ctx, day); err != nil {
		return fmt.Errorf("compute daily scores: %w", err)
	}
	if _, err := e.SelectAllPlaylists(ctx, day); err != nil {
		return fmt.Errorf("select playlists: %w", err)
	}
	return nil
}

// RecordRetention applies a playback observation to the matching
// publication outcome; the out-of-band half of the feedback loop.
func (e *Engine) RecordRetention(ctx context.Context, sourceID, segmentID string, retention float64) error {
	if e.sources == nil {
		return nil
	}
	if retention < 0 || retention > 1 {
		return fmt.Errorf("retention %g outside [0,1]", retention)
	}

	e.trustMu.Lock()
	defer e.trustMu.Unlock()

	sources, err := e.sources.LoadSources(ctx)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	for _, src := range sources {
		if src.ID != sourceID {
			continue
		}
		for i := range src.Outcomes {
			if src.Outcomes[i].SegmentID == segmentID {
				src.Outcomes[i].Retention = retention
				src.Outcomes[i].HasRetention = true
			}
		}
		src.UpdatedAt = time.Now().UTC()
		if err := e.sources.SaveSource(ctx, src); err != nil {
			return fmt.Errorf("save source %s: %w", sourceID, err)
		}
		return nil
	}

	return fmt.Errorf("unknown source %s", sourceID)
}

func (e *Engine) loadPool(ctx context.Context, day time.Time) (domain.ScoredPool, error) {
	if e.pools == nil {
		return domain.ScoredPool{Date: day}, nil
	}
	pool, err := e.pools.LoadPool(ctx, day)
	if err != nil {
		return domain.ScoredPool{}, fmt.Errorf("load pool: %w", err)
	}
	return pool, nil
}

func (e *Engine) selectFromPool(ctx context.Context, userID string, day time.Time, pool domain.ScoredPool) (domain.Playlist, error) {
	weights := domain.UserWeights{}
	if e.weights != nil {
		loaded, err := e.weights.LoadWeights(ctx, userID)
		if err != nil {
			return domain.Playlist{}, fmt.Errorf("load weights for %s: %w", userID, err)
		}
		if loaded != nil {
			weights = loaded
		}
	}

	selection := e.newSelector().Select(pool, weights, day)

	out := domain.Playlist{
		UserID:     userID,
		Date:       pool.Date,
		SegmentIDs: selection.SegmentIDs,
		Breakdowns: selection.Breakdowns,
		CreatedAt:  time.Now().UTC(),
	}

	if e.playlists != nil && len(out.SegmentIDs) > 0 {
		if err := e.playlists.SavePlaylist(ctx, out); err != nil {
			return domain.Playlist{}, fmt.Errorf("persist playlist for %s: %w", userID, err)
		}
	}
	return out, nil
}

// registerAndIndexSources loads known sources, creates records for
// publishers seen for the first time, and returns an id-indexed view.
func (e *Engine) registerAndIndexSources(ctx context.Context, segments []domain.Segment) (map[string]domain.Source, error) {
	index := map[string]domain.Source{}
	if e.sources == nil {
		return index, nil
	}

	known, err := e.sources.LoadSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	for _, src := range known {
		index[src.ID] = src
	}

	for _, seg := range segments {
		if _, ok := index[seg.SourceID]; ok {
			continue
		}
		src := domain.Source{
			ID:         seg.SourceID,
			Tier:       seg.Tier,
			TrustScore: 50,
			State:      domain.SourceActive,
			UpdatedAt:  time.Now().UTC(),
		}
		if err := e.sources.SaveSource(ctx, src); err != nil {
			return nil, fmt.Errorf("register source %s: %w", seg.SourceID, err)
		}
		index[src.ID] = src
		e.info("new source registered", "source", src.ID, "tier", src.Tier)
	}

	return index, nil
}

func (e *Engine) dropQuarantined(segments []domain.Segment, index map[string]domain.Source) ([]domain.Segment, int) {
	kept := make([]domain.Segment, 0, len(segments))
	dropped := 0
	for _, seg := range segments {
		if src, ok := index[seg.SourceID]; ok && src.State == domain.SourceQuarantined {
			dropped++
			continue
		}
		kept = append(kept, seg)
	}
	return kept, dropped
}

// fillMissingRelevance asks the quality oracle to score segments that
// arrived without a raw relevance. Oracle failures degrade to neutral
// defaults; the pipeline never stalls on the evaluator.
func (e *Engine) fillMissingRelevance(ctx context.Context, segments []domain.Segment) []domain.Segment {
	for i, seg := range segments {
		if seg.Relevance > 0 {
			continue
		}
		if e.evaluator == nil {
			segments[i].Relevance = scoring.DefaultRelevance
			continue
		}
		eval, err := e.evaluator.Evaluate(ctx, seg.Title, seg.Summary, seg.TopicID, seg.CreatedAt)
		if err != nil {
			e.warn("evaluator failed, using neutral quality", "segment", seg.ID, "error", err)
			segments[i].Relevance = scoring.NeutralQuality()
			continue
		}
		segments[i].Relevance = scoring.Quality(eval)
	}
	return segments
}

// recordSelectionOutcomes appends a selected/not-selected observation to
// each contributing source's rolling window.
func (e *Engine) recordSelectionOutcomes(ctx context.Context, segments []domain.Segment, pool domain.ScoredPool, index map[string]domain.Source) error {
	if e.sources == nil {
		return nil
	}

	selected := make(map[string]bool, len(pool.Segments))
	for _, seg := range pool.Segments {
		selected[seg.ID] = true
	}

	touched := map[string]bool{}
	for _, seg := range segments {
		src, ok := index[seg.SourceID]
		if !ok {
			continue
		}
		src.RecordOutcome(domain.PublicationOutcome{
			SegmentID: seg.ID,
			Selected:  selected[seg.ID],
		})
		index[seg.SourceID] = src
		touched[seg.SourceID] = true
	}

	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		src := index[id]
		src.UpdatedAt = time.Now().UTC()
		if err := e.sources.SaveSource(ctx, src); err != nil {
			return fmt.Errorf("record outcomes for %s: %w", id, err)
		}
		index[id] = src
	}
	return nil
}

func dedupeByID(segments []domain.Segment) []domain.Segment {
	seen := make(map[string]bool, len(segments))
	out := make([]domain.Segment, 0, len(segments))
	for _, seg := range segments {
		if seen[seg.ID] {
			continue
		}
		seen[seg.ID] = true
		out = append(out, seg)
	}
	return out
}

func (e *Engine) info(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
