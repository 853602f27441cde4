package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

// execer is the part of *pgxpool.Pool the sink needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink keeps the latest persona per username.
type PostgresSink struct {
	db    execer
	pool  *pgxpool.Pool
	runID string
}

var _ ports.PersonaSink = (*PostgresSink)(nil)

func NewPostgresSink(ctx context.Context, connStr, runID string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	s := &PostgresSink{db: pool, pool: pool, runID: runID}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS personas (
			username TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			document TEXT NOT NULL,
			run_id TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresSink) Save(ctx context.Context, doc domain.PersonaDocument, username string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO personas (username, status, document, run_id, updated_at) VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		 ON CONFLICT (username) DO UPDATE SET
		 status = $2, document = $3, run_id = $4, updated_at = CURRENT_TIMESTAMP`,
		username, string(doc.Status), doc.Text(), s.runID)
	if err != nil {
		return fmt.Errorf("upsert persona %s: %w", username, err)
	}
	return nil
}

func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
