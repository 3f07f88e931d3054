package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/ports"
)

var _ ports.PlaylistRepository = (*SQLiteStore)(nil)

// SavePlaylist stores the ordered selection and its score breakdowns,
// replacing any earlier playlist for the same user and date.
func (s *SQLiteStore) SavePlaylist(ctx context.Context, playlist domain.Playlist) error {
	if len(playlist.SegmentIDs) != len(playlist.Breakdowns) {
		return fmt.Errorf("playlist %s: %d ids but %d breakdowns",
			playlist.ID, len(playlist.SegmentIDs), len(playlist.Breakdowns))
	}
	if playlist.ID == "" {
		playlist.ID = s.newID()
	}
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = time.Now().UTC()
	}
	day := playlist.Date.Format(dayFormat)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	del, args, err := s.sb.Delete("playlists").
		Where(sq.Eq{"user_id": playlist.UserID, "day": day}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build playlist delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("clear playlist %s/%s: %w", playlist.UserID, day, err)
	}

	ins, args, err := s.sb.
		Insert("playlists").
		Columns("id", "user_id", "day", "created_at").
		Values(playlist.ID, playlist.UserID, day, playlist.CreatedAt.Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build playlist insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ins, args...); err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}

	for i, b := range playlist.Breakdowns {
		item, args, err := s.sb.
			Insert("playlist_items").
			Columns("playlist_id", "position", "segment_id",
				"relevance", "weight", "decay", "final", "wildcard").
			Values(playlist.ID, i+1, b.SegmentID, b.Relevance, b.Weight, b.Decay, b.Final, b.Wildcard).
			ToSql()
		if err != nil {
			return fmt.Errorf("build item insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, item, args...); err != nil {
			return fmt.Errorf("insert playlist item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist: %w", err)
	}
	return nil
}

// LoadPlaylist fetches one user's playlist for a calendar date.
func (s *SQLiteStore) LoadPlaylist(ctx context.Context, userID string, day time.Time) (domain.Playlist, error) {
	playlist := domain.Playlist{UserID: userID, Date: dayOf(day)}

	head, args, err := s.sb.
		Select("id", "created_at").
		From("playlists").
		Where(sq.Eq{"user_id": userID, "day": day.Format(dayFormat)}).
		ToSql()
	if err != nil {
		return playlist, fmt.Errorf("build playlist query: %w", err)
	}

	var createdAt string
	if err := s.db.QueryRowContext(ctx, head, args...).Scan(&playlist.ID, &createdAt); err != nil {
		return playlist, fmt.Errorf("query playlist: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		playlist.CreatedAt = t
	}

	items, args, err := s.sb.
		Select("segment_id", "relevance", "weight", "decay", "final", "wildcard").
		From("playlist_items").
		Where(sq.Eq{"playlist_id": playlist.ID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return playlist, fmt.Errorf("build items query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, items, args...)
	if err != nil {
		return playlist, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.ScoreBreakdown
		if err := rows.Scan(&b.SegmentID, &b.Relevance, &b.Weight, &b.Decay, &b.Final, &b.Wildcard); err != nil {
			return playlist, fmt.Errorf("scan item: %w", err)
		}
		playlist.SegmentIDs = append(playlist.SegmentIDs, b.SegmentID)
		playlist.Breakdowns = append(playlist.Breakdowns, b)
	}
	if err := rows.Err(); err != nil {
		return playlist, fmt.Errorf("rows iteration: %w", err)
	}

	return playlist, nil
}
