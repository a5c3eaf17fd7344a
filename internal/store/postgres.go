package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"mysteryforge/internal/progress"
	"mysteryforge/internal/types"
)

// PostgresStore persists runs through the pgx stdlib driver. Reads of the
// latest artifact go through a small LRU so the orchestrator's re-reads of
// sibling artifacts stay off the database.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	latest *lru.Cache[string, json.RawMessage]
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, json.RawMessage](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, latest: cache}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS run_artifacts (
    id         BIGSERIAL PRIMARY KEY,
    run_id     TEXT        NOT NULL,
    kind       TEXT        NOT NULL,
    payload    JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS run_artifacts_run_kind_idx ON run_artifacts (run_id, kind, id DESC);
CREATE TABLE IF NOT EXISTS run_progress (
    id         BIGSERIAL PRIMARY KEY,
    run_id     TEXT        NOT NULL,
    stage      TEXT        NOT NULL,
    message    TEXT        NOT NULL,
    percentage INT         NOT NULL,
    emitted_at TIMESTAMPTZ NOT NULL
);`)
		s.schemaErr = err
	})
	return s.schemaErr
}

func cacheKey(runID string, kind types.Kind) string {
	return runID + "/" + string(kind)
}

func (s *PostgresStore) AppendArtifact(ctx context.Context, runID string, kind types.Kind, artifact any) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	raw, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("store: marshal %s artifact: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_artifacts (run_id, kind, payload) VALUES ($1, $2, $3)`,
		runID, string(kind), raw)
	if err != nil {
		return fmt.Errorf("store: append artifact: %w", err)
	}
	s.latest.Add(cacheKey(runID, kind), raw)
	return nil
}

func (s *PostgresStore) AppendProgress(ctx context.Context, runID string, ev progress.Event) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_progress (run_id, stage, message, percentage, emitted_at) VALUES ($1, $2, $3, $4, $5)`,
		runID, ev.Stage, ev.Message, ev.Percentage, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("store: append progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestArtifact(ctx context.Context, runID string, kind types.Kind) (json.RawMessage, bool, error) {
	if raw, ok := s.latest.Get(cacheKey(runID, kind)); ok {
		return raw, true, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, false, fmt.Errorf("store: ensure schema: %w", err)
	}
	var raw json.RawMessage
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM run_artifacts WHERE run_id = $1 AND kind = $2 ORDER BY id DESC LIMIT 1`,
		runID, string(kind)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: latest artifact: %w", err)
	}
	s.latest.Add(cacheKey(runID, kind), raw)
	return raw, true, nil
}
