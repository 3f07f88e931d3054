package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/ports"
)

var _ ports.PoolRepository = (*SQLiteStore)(nil)

// LoadPool returns the scored segment pool for one calendar date.
func (s *SQLiteStore) LoadPool(ctx context.Context, day time.Time) (domain.ScoredPool, error) {
	pool := domain.ScoredPool{Date: dayOf(day)}

	query, args, err := s.sb.
		Select("id", "topic_id", "source_id", "tier", "relevance", "raw_relevance",
			"created_at", "duration_seconds", "media_ref", "cluster_score", "base_share").
		From("pool_segments").
		Where(sq.Eq{"day": day.Format(dayFormat)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return pool, fmt.Errorf("build pool query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return pool, fmt.Errorf("query pool: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seg       domain.ScoredSegment
			createdAt string
			mediaRef  *string
		)
		if err := rows.Scan(&seg.ID, &seg.TopicID, &seg.SourceID, &seg.Tier, &seg.Relevance,
			&seg.RawRelevance, &createdAt, &seg.DurationSeconds, &mediaRef,
			&seg.ClusterScore, &seg.BaseShare); err != nil {
			return pool, fmt.Errorf("scan pool segment: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			seg.CreatedAt = t
		}
		if mediaRef != nil {
			seg.MediaRef = *mediaRef
		}
		pool.Segments = append(pool.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return pool, fmt.Errorf("rows iteration: %w", err)
	}

	return pool, nil
}

// SavePool replaces the stored pool for the pool's date; recomputation
// supersedes rather than mutates.
func (s *SQLiteStore) SavePool(ctx context.Context, pool domain.ScoredPool) error {
	day := pool.Date.Format(dayFormat)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	del, args, err := s.sb.Delete("pool_segments").Where(sq.Eq{"day": day}).ToSql()
	if err != nil {
		return fmt.Errorf("build pool delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("clear pool for %s: %w", day, err)
	}

	for _, seg := range pool.Segments {
		ins, args, err := s.sb.
			Insert("pool_segments").
			Columns("day", "id", "topic_id", "source_id", "tier", "relevance", "raw_relevance",
				"created_at", "duration_seconds", "media_ref", "cluster_score", "base_share").
			Values(day, seg.ID, seg.TopicID, seg.SourceID, string(seg.Tier), seg.Relevance,
				seg.RawRelevance, seg.CreatedAt.Format(time.RFC3339), seg.DurationSeconds,
				seg.MediaRef, seg.ClusterScore, seg.BaseShare).
			ToSql()
		if err != nil {
			return fmt.Errorf("build pool insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, ins, args...); err != nil {
			return fmt.Errorf("insert pool segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pool: %w", err)
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
