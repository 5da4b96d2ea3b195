// Package sqlite provides a SQLite-backed resolution journal.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// DefaultRecentLimit caps Recent when the caller passes a non-positive limit.
const DefaultRecentLimit = 20

// created_at is stored as fixed-width UTC text so it sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Adapter implements the resolution journal for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite journal: open: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite journal: ping: %w", err)
	}

	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite journal: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Record stores entry and its scored candidates in one transaction.
func (a *Adapter) Record(ctx context.Context, entry domain.JournalEntry) error {
	reqJSON, err := json.Marshal(entry.Request)
	if err != nil {
		return fmt.Errorf("sqlite journal: encode request: %w", err)
	}
	resJSON, err := json.Marshal(entry.Resolution)
	if err != nil {
		return fmt.Errorf("sqlite journal: encode resolution: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite journal: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resolutions (
			id, created_at, raw, title, artist, parse_method,
			success, failure, message, query_used, request_json, resolution_json
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.CreatedAt.UTC().Format(timeLayout),
		entry.Request.Raw,
		entry.Request.Title,
		entry.Request.Artist,
		string(entry.Request.Method),
		entry.Resolution.Success,
		string(entry.Resolution.Details.Failure),
		entry.Resolution.Message,
		entry.Resolution.Details.QueryUsed,
		string(reqJSON),
		string(resJSON),
	); err != nil {
		return fmt.Errorf("sqlite journal: save resolution %s: %w", entry.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scored_candidates (
			resolution_id, ordinal, position, title, artist, album,
			score, title_score, artist_score, version_score, live, acoustic
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite journal: prepare candidates: %w", err)
	}
	defer stmt.Close()

	for ordinal, sc := range entry.Scored {
		if _, err := stmt.ExecContext(
			ctx,
			entry.ID,
			ordinal,
			sc.Position,
			sc.Candidate.Title,
			sc.Candidate.Artist,
			sc.Candidate.Album,
			sc.Score,
			sc.TitleScore,
			sc.ArtistScore,
			sc.VersionScore,
			sc.Version.Live,
			sc.Version.Acoustic,
		); err != nil {
			return fmt.Errorf("sqlite journal: save candidate %d: %w", sc.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite journal: commit: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (a *Adapter) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, request_json, resolution_json
		FROM resolutions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite journal: list resolutions: %w", err)
	}

	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite journal: iterate resolutions: %w", err)
	}
	rows.Close()

	for i := range entries {
		scored, err := a.loadScored(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Scored = scored
	}
	return entries, nil
}

// Get returns one entry by id, or domain.ErrNotFound.
func (a *Adapter) Get(ctx context.Context, id string) (domain.JournalEntry, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, created_at, request_json, resolution_json
		FROM resolutions WHERE id = ?
	`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.JournalEntry{}, domain.ErrNotFound
		}
		return domain.JournalEntry{}, err
	}

	entry.Scored, err = a.loadScored(ctx, id)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (domain.JournalEntry, error) {
	var (
		entry            domain.JournalEntry
		createdAt        string
		reqJSON, resJSON string
	)
	if err := s.Scan(&entry.ID, &createdAt, &reqJSON, &resJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.JournalEntry{}, err
		}
		return domain.JournalEntry{}, fmt.Errorf("sqlite journal: scan resolution: %w", err)
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("sqlite journal: parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = ts

	if err := json.Unmarshal([]byte(reqJSON), &entry.Request); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("sqlite journal: decode request %s: %w", entry.ID, err)
	}
	if err := json.Unmarshal([]byte(resJSON), &entry.Resolution); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("sqlite journal: decode resolution %s: %w", entry.ID, err)
	}
	return entry, nil
}

func (a *Adapter) loadScored(ctx context.Context, id string) ([]domain.ScoredCandidate, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT position, title, artist, IFNULL(album, ''),
			score, title_score, artist_score, version_score, live, acoustic
		FROM scored_candidates
		WHERE resolution_id = ?
		ORDER BY ordinal ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite journal: load candidates: %w", err)
	}
	defer rows.Close()

	var scored []domain.ScoredCandidate
	for rows.Next() {
		var sc domain.ScoredCandidate
		if err := rows.Scan(
			&sc.Position,
			&sc.Candidate.Title,
			&sc.Candidate.Artist,
			&sc.Candidate.Album,
			&sc.Score,
			&sc.TitleScore,
			&sc.ArtistScore,
			&sc.VersionScore,
			&sc.Version.Live,
			&sc.Version.Acoustic,
		); err != nil {
			return nil, fmt.Errorf("sqlite journal: scan candidate: %w", err)
		}
		sc.Candidate.Position = sc.Position
		scored = append(scored, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite journal: iterate candidates: %w", err)
	}
	return scored, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS resolutions (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		raw TEXT,
		title TEXT NOT NULL,
		artist TEXT,
		success INTEGER NOT NULL,
		failure TEXT,
		message TEXT NOT NULL,
		query_used TEXT,
		request_json TEXT NOT NULL,
		resolution_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions (created_at);

	CREATE TABLE IF NOT EXISTS scored_candidates (
		resolution_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		score REAL NOT NULL,
		title_score REAL NOT NULL,
		artist_score REAL NOT NULL,
		version_score REAL NOT NULL,
		live INTEGER NOT NULL DEFAULT 0,
		acoustic INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (resolution_id, ordinal),
		FOREIGN KEY(resolution_id) REFERENCES resolutions(id) ON DELETE CASCADE
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Journals written before parse_method was tracked lack the column.
	if _, err := a.db.Exec("ALTER TABLE resolutions ADD COLUMN parse_method TEXT"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
