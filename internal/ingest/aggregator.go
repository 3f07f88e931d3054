package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DigestEngine/internal/config"
	"DigestEngine/internal/domain"
	"DigestEngine/internal/ports"
)

// Aggregator implements ports.SegmentSource across configured feeds,
// resolving each feed's provider strategy from the registry.
type Aggregator struct {
	registry *Registry
	feeds    []config.FeedConfig
	logger   *slog.Logger
}

var _ ports.SegmentSource = (*Aggregator)(nil)

// NewAggregator wires the provider registry with config-defined feeds.
func NewAggregator(reg *Registry, feeds []config.FeedConfig, log *slog.Logger) *Aggregator {
	return &Aggregator{
		registry: reg,
		feeds:    feeds,
		logger:   log,
	}
}

// FetchDaily iterates over configured feeds and executes their providers.
// Rows may still contain duplicates across feeds; the engine deduplicates
// by segment id before scoring.
func (a *Aggregator) FetchDaily(ctx context.Context, day time.Time) ([]domain.Segment, error) {
	if a.registry == nil {
		return nil, fmt.Errorf("ingest registry is not configured")
	}

	a.debug("fetch daily", "feeds", len(a.feeds), "day", day.Format("2006-01-02"))

	var aggregated []domain.Segment
	for _, feed := range a.feeds {
		provider, err := a.registry.Resolve(feed.Provider)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
		}

		req := Request{
			Day:      day,
			FeedName: feed.Name,
			URL:      feed.URL,
			Options:  feed.Options,
		}

		rows, err := provider.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
		}

		for i := range rows {
			if rows[i].Tier == "" {
				rows[i].Tier = domain.TierGeneralist
			}
		}
		a.debug("feed produced segments", "feed", feed.Name, "count", len(rows))
		aggregated = append(aggregated, rows...)
	}

	a.debug("aggregator done", "total_segments", len(aggregated))
	return aggregated, nil
}

func (a *Aggregator) debug(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
