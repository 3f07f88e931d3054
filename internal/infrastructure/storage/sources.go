package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/ports"
)

var _ ports.SourceRepository = (*SQLiteStore)(nil)

// LoadSources returns all known publisher records.
func (s *SQLiteStore) LoadSources(ctx context.Context) ([]domain.Source, error) {
	query, args, err := s.sb.
		Select("id", "tier", "trust_score", "state", "outcomes",
			"lead_time_hours", "below_cycles", "cycles_in_state", "updated_at").
		From("sources").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var (
			src       domain.Source
			outcomes  string
			updatedAt string
		)
		if err := rows.Scan(&src.ID, &src.Tier, &src.TrustScore, &src.State,
			&outcomes, &src.LeadTimeHours, &src.BelowCycles, &src.CyclesInState, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		if err := json.Unmarshal([]byte(outcomes), &src.Outcomes); err != nil {
			return nil, fmt.Errorf("unmarshal outcomes for %s: %w", src.ID, err)
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			src.UpdatedAt = t
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}

// SaveSource upserts a publisher record; the trust store is its single writer.
func (s *SQLiteStore) SaveSource(ctx context.Context, source domain.Source) error {
	outcomes, err := json.Marshal(source.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = time.Now().UTC()
	}

	query, args, err := s.sb.
		Insert("sources").
		Columns("id", "tier", "trust_score", "state", "outcomes",
			"lead_time_hours", "below_cycles", "cycles_in_state", "updated_at").
		Values(source.ID, string(source.Tier), source.TrustScore, string(source.State),
			string(outcomes), source.LeadTimeHours, source.BelowCycles, source.CyclesInState,
			source.UpdatedAt.Format(time.RFC3339)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			tier = excluded.tier,
			trust_score = excluded.trust_score,
			state = excluded.state,
			outcomes = excluded.outcomes,
			lead_time_hours = excluded.lead_time_hours,
			below_cycles = excluded.below_cycles,
			cycles_in_state = excluded.cycles_in_state,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build source upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert source %s: %w", source.ID, err)
	}
	return nil
}
