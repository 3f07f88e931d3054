package ports

import (
	"context"
	"time"

	"DigestEngine/internal/domain"
)

// SegmentSource pulls scored content units from the ingestion layer.
// Rows may be partial or duplicated; callers deduplicate by segment id.
type SegmentSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.Segment, error)
}

// QualityEvaluation is the oracle's verdict on one piece of content.
type QualityEvaluation struct {
	RecencyScore      float64 // 0-100
	ConnectivityScore float64 // 0-100
	Reasoning         string
}

// QualityEvaluator scores content when raw relevance is not supplied
// upstream. Implementations are external oracles (LLM APIs).
type QualityEvaluator interface {
	Evaluate(ctx context.Context, title, summary, topic string, sourceDate time.Time) (QualityEvaluation, error)
}

// SourceRepository persists publisher trust records.
type SourceRepository interface {
	LoadSources(ctx context.Context) ([]domain.Source, error)
	SaveSource(ctx context.Context, source domain.Source) error
}

// PoolRepository persists the scored daily segment pool.
type PoolRepository interface {
	LoadPool(ctx context.Context, day time.Time) (domain.ScoredPool, error)
	SavePool(ctx context.Context, pool domain.ScoredPool) error
}

// WeightsRepository persists per-user topic weights.
type WeightsRepository interface {
	LoadWeights(ctx context.Context, userID string) (domain.UserWeights, error)
	SaveWeights(ctx context.Context, userID string, weights domain.UserWeights) error
	ListUsers(ctx context.Context) ([]string, error)
}

// PlaylistRepository persists computed playlists with their breakdowns.
type PlaylistRepository interface {
	SavePlaylist(ctx context.Context, playlist domain.Playlist) error
	LoadPlaylist(ctx context.Context, userID string, day time.Time) (domain.Playlist, error)
}

// Scheduler controls when the daily recompute executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
