// Package db provides PostgreSQL storage for evidence runs.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS evidence_runs (
	id UUID PRIMARY KEY,
	feature_text TEXT NOT NULL,
	business_context TEXT NOT NULL DEFAULT '',
	keywords TEXT[] NOT NULL,
	overall_score INTEGER NOT NULL,
	document JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS evidence_runs_created_at_idx ON evidence_runs (created_at DESC);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and makes sure the
// evidence_runs table exists.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// SaveEvidence stores a scored evidence document with the request that
// produced it and returns the new run ID.
func (db *DB) SaveEvidence(ctx context.Context, req *types.EvidenceRequest, doc *evidence.Scored) (uuid.UUID, error) {
	if req == nil || doc == nil {
		return uuid.Nil, fmt.Errorf("failed to save evidence: request and document are required")
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal evidence: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO evidence_runs (id, feature_text, business_context, keywords, overall_score, document, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, req.FeatureText, req.BusinessContext, doc.Keywords, doc.Signals.OverallScore, jsonBytes, doc.GeneratedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save evidence: %w", err)
	}
	return id, nil
}

// GetEvidence retrieves a stored run with its document. It returns nil, nil
// when the run does not exist.
func (db *DB) GetEvidence(ctx context.Context, id uuid.UUID) (*StoredEvidence, error) {
	var stored StoredEvidence
	err := db.pool.QueryRow(ctx,
		`SELECT id, feature_text, keywords, overall_score, created_at, document
		 FROM evidence_runs WHERE id = $1`,
		id,
	).Scan(&stored.ID, &stored.FeatureText, &stored.Keywords, &stored.Overall, &stored.CreatedAt, &stored.Document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}
	return &stored, nil
}

// ListEvidence retrieves the most recent runs without their documents.
func (db *DB) ListEvidence(ctx context.Context, limit int) ([]types.EvidenceRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, feature_text, keywords, overall_score, created_at
		 FROM evidence_runs ORDER BY created_at DESC LIMIT $1`,
		NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	defer rows.Close()

	runs := []types.EvidenceRun{}
	for rows.Next() {
		var run types.EvidenceRun
		if err := rows.Scan(&run.ID, &run.FeatureText, &run.Keywords, &run.Overall, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evidence run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	return runs, nil
}

// DeleteEvidence removes a stored run. Deleting a missing run is not an error.
func (db *DB) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM evidence_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}
	return nil
}
