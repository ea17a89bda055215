package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB serves job postings from PostgreSQL.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetDescription returns the posting's description text.
func (db *DB) GetDescription(ctx context.Context, jobID string) (string, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return "", fmt.Errorf("job posting id %q: %w", jobID, err)
	}

	var description string
	err = db.pool.QueryRow(ctx,
		`SELECT description FROM job_postings WHERE id = $1`,
		id,
	).Scan(&description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("job posting %q: %w", jobID, ErrNotFound)
		}
		return "", fmt.Errorf("get job posting: %w", err)
	}

	return description, nil
}

// Upsert stores a posting and returns its ID. Used to seed postings for a
// screening run.
func (db *DB) Upsert(ctx context.Context, jobID, title, description string) (string, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		id = uuid.New()
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (id, title, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET title = $2, description = $3, updated_at = NOW()
		 RETURNING id`,
		id, title, description,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert job posting: %w", err)
	}

	return id.String(), nil
}
