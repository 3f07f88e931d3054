// Package storage persists sources, scored pools, user weights, and
// playlists in an embedded SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const dayFormat = "2006-01-02"

// SQLiteStore implements the engine's repository ports on SQLite.
type SQLiteStore struct {
	db      *sql.DB
	sb      sq.StatementBuilderType
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		sb:      sq.StatementBuilder.PlaceholderFormat(sq.Question),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id              TEXT PRIMARY KEY,
		tier            TEXT NOT NULL,
		trust_score     REAL NOT NULL DEFAULT 50.0,
		state           TEXT NOT NULL DEFAULT 'active',
		outcomes        TEXT NOT NULL DEFAULT '[]',
		lead_time_hours REAL NOT NULL DEFAULT 0,
		below_cycles    INTEGER NOT NULL DEFAULT 0,
		cycles_in_state INTEGER NOT NULL DEFAULT 0,
		updated_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pool_segments (
		day              TEXT NOT NULL,
		id               TEXT NOT NULL,
		topic_id         TEXT NOT NULL,
		source_id        TEXT NOT NULL,
		tier             TEXT NOT NULL,
		relevance        REAL NOT NULL,
		raw_relevance    REAL NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		media_ref        TEXT,
		cluster_score    REAL NOT NULL DEFAULT 0,
		base_share       REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (day, id)
	);
	CREATE INDEX IF NOT EXISTS idx_pool_segments_day ON pool_segments(day);

	CREATE TABLE IF NOT EXISTS user_weights (
		user_id  TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		weight   INTEGER NOT NULL,
		PRIMARY KEY (user_id, topic_id)
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		day        TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (user_id, day)
	);

	CREATE TABLE IF NOT EXISTS playlist_items (
		playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		segment_id  TEXT NOT NULL,
		relevance   REAL NOT NULL,
		weight      INTEGER NOT NULL,
		decay       REAL NOT NULL,
		final       REAL NOT NULL,
		wildcard    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (playlist_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
