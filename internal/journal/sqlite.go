package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates if needed) the journal database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		command TEXT NOT NULL,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		assets INTEGER NOT NULL,
		manifest_hash TEXT,
		error TEXT,
		stages TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a build.
func (s *SQLiteStore) Record(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stagesJSON []byte
	if len(b.Stages) > 0 {
		ms := make(map[string]int64, len(b.Stages))
		for name, d := range b.Stages {
			ms[name] = d.Milliseconds()
		}
		var err error
		stagesJSON, err = json.Marshal(ms)
		if err != nil {
			return fmt.Errorf("marshal stages: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, command, started, duration_ms, outcome, pages, assets, manifest_hash, error, stages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BuildID, b.Command, b.Started.UnixMilli(), b.Duration.Milliseconds(), b.Outcome,
		b.Pages, b.Assets, b.ManifestHash, b.Error, string(stagesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, build_id, command, started, duration_ms, outcome, pages, assets, manifest_hash, error, stages
		 FROM builds ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var started, durationMS int64
		var hash, errText, stagesJSON sql.NullString

		if err := rows.Scan(&b.ID, &b.BuildID, &b.Command, &started, &durationMS, &b.Outcome,
			&b.Pages, &b.Assets, &hash, &errText, &stagesJSON); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}

		b.Started = time.UnixMilli(started)
		b.Duration = time.Duration(durationMS) * time.Millisecond
		b.ManifestHash = hash.String
		b.Error = errText.String

		if stagesJSON.String != "" {
			var ms map[string]int64
			if err := json.Unmarshal([]byte(stagesJSON.String), &ms); err != nil {
				return nil, fmt.Errorf("unmarshal stages: %w", err)
			}
			b.Stages = make(map[string]time.Duration, len(ms))
			for name, v := range ms {
				b.Stages[name] = time.Duration(v) * time.Millisecond
			}
		}

		builds = append(builds, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return builds, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
