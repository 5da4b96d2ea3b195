// Package postgres provides a PostgreSQL-backed resolution journal.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// DefaultRecentLimit caps Recent when the caller passes a non-positive limit.
const DefaultRecentLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	raw TEXT,
	title TEXT NOT NULL,
	artist TEXT,
	parse_method TEXT,
	success BOOLEAN NOT NULL,
	failure TEXT,
	message TEXT NOT NULL,
	query_used TEXT,
	request JSONB NOT NULL,
	resolution JSONB NOT NULL,
	scored JSONB NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions (created_at DESC);
`

// Journal wraps a PostgreSQL connection pool
type Journal struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the schema exists
func Connect(ctx context.Context, databaseURL string) (*Journal, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres journal: connect: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres journal: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres journal: migrate: %w", err)
	}

	return &Journal{pool: pool}, nil
}

// Close closes the connection pool
func (j *Journal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}

// Record inserts entry. Scored candidates are kept as a JSONB array.
func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	reqJSON, err := json.Marshal(entry.Request)
	if err != nil {
		return fmt.Errorf("postgres journal: marshal request: %w", err)
	}
	resJSON, err := json.Marshal(entry.Resolution)
	if err != nil {
		return fmt.Errorf("postgres journal: marshal resolution: %w", err)
	}
	scored := entry.Scored
	if scored == nil {
		scored = []domain.ScoredCandidate{}
	}
	scoredJSON, err := json.Marshal(scored)
	if err != nil {
		return fmt.Errorf("postgres journal: marshal scored: %w", err)
	}

	_, err = j.pool.Exec(ctx,
		`INSERT INTO resolutions (
			id, created_at, raw, title, artist, parse_method,
			success, failure, message, query_used, request, resolution, scored
		 )
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID,
		entry.CreatedAt,
		entry.Request.Raw,
		entry.Request.Title,
		entry.Request.Artist,
		string(entry.Request.Method),
		entry.Resolution.Success,
		string(entry.Resolution.Details.Failure),
		entry.Resolution.Message,
		entry.Resolution.Details.QueryUsed,
		reqJSON,
		resJSON,
		scoredJSON,
	)
	if err != nil {
		return fmt.Errorf("postgres journal: save resolution %s: %w", entry.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := j.pool.Query(ctx,
		`SELECT id, created_at, request, resolution, scored
		 FROM resolutions
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres journal: list resolutions: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres journal: iterate resolutions: %w", err)
	}
	return entries, nil
}

// Get returns one entry by id, or domain.ErrNotFound.
func (j *Journal) Get(ctx context.Context, id string) (domain.JournalEntry, error) {
	row := j.pool.QueryRow(ctx,
		`SELECT id, created_at, request, resolution, scored
		 FROM resolutions WHERE id = $1`,
		id,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JournalEntry{}, domain.ErrNotFound
		}
		return domain.JournalEntry{}, err
	}
	return entry, nil
}

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var (
		entry                        domain.JournalEntry
		reqJSON, resJSON, scoredJSON []byte
	)
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &reqJSON, &resJSON, &scoredJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JournalEntry{}, err
		}
		return domain.JournalEntry{}, fmt.Errorf("postgres journal: scan resolution: %w", err)
	}

	if err := json.Unmarshal(reqJSON, &entry.Request); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("postgres journal: unmarshal request %s: %w", entry.ID, err)
	}
	if err := json.Unmarshal(resJSON, &entry.Resolution); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("postgres journal: unmarshal resolution %s: %w", entry.ID, err)
	}
	if err := json.Unmarshal(scoredJSON, &entry.Scored); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("postgres journal: unmarshal scored %s: %w", entry.ID, err)
	}
	if len(entry.Scored) == 0 {
		entry.Scored = nil
	}
	return entry, nil
}
