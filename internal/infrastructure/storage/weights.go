package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/ports"
)

var _ ports.WeightsRepository = (*SQLiteStore)(nil)

// LoadWeights returns the user's explicit topic weights. Topics absent
// from the result default to 50 at read time via domain.UserWeights.
func (s *SQLiteStore) LoadWeights(ctx context.Context, userID string) (domain.UserWeights, error) {
	query, args, err := s.sb.
		Select("topic_id", "weight").
		From("user_weights").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build weights query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weights: %w", err)
	}
	defer rows.Close()

	weights := domain.UserWeights{}
	for rows.Next() {
		var (
			topic  string
			weight int
		)
		if err := rows.Scan(&topic, &weight); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		weights[topic] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return weights, nil
}

// SaveWeights upserts the user's explicit topic weights.
func (s *SQLiteStore) SaveWeights(ctx context.Context, userID string, weights domain.UserWeights) error {
	for topic, weight := range weights {
		if weight < 0 || weight > 100 {
			return fmt.Errorf("weight %d for topic %s outside [0,100]", weight, topic)
		}
		query, args, err := s.sb.
			Insert("user_weights").
			Columns("user_id", "topic_id", "weight").
			Values(userID, topic, weight).
			Suffix("ON CONFLICT (user_id, topic_id) DO UPDATE SET weight = excluded.weight").
			ToSql()
		if err != nil {
			return fmt.Errorf("build weight upsert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert weight %s/%s: %w", userID, topic, err)
		}
	}
	return nil
}

// ListUsers returns every user with at least one explicit weight.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]string, error) {
	query, _, err := s.sb.
		Select("DISTINCT user_id").
		From("user_weights").
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build users query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return users, nil
}
