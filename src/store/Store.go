/**
 * Store - local sqlite state: the pending draft and the save history
 */

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	"github.com/ln64-git/hyprarrange/src/utility"
)

var (
	// ErrNotFound is returned when no history entry matches
	ErrNotFound = errors.New("history entry not found")
	// ErrAmbiguous is returned when an id prefix matches more than one entry
	ErrAmbiguous = errors.New("history id prefix is ambiguous")
)

// Draft is the unsaved arrangement carried between invocations
type Draft struct {
	Monitors  []arrangement.Monitor
	Selected  string
	UpdatedAt time.Time
}

// Entry is one saved arrangement
type Entry struct {
	ID       string
	SavedAt  time.Time
	Path     string
	Monitors []arrangement.Monitor
}

// Store keeps arrangement state between invocations
type Store struct {
	db     *sql.DB
	logger *utility.Logger
	now    func() time.Time
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS draft (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		monitors   TEXT    NOT NULL,
		selected   TEXT    NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		id       TEXT    PRIMARY KEY,
		saved_at INTEGER NOT NULL,
		path     TEXT    NOT NULL,
		monitors TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_saved_at ON history (saved_at DESC)`,
}

// Open opens or creates the database at path and brings its schema up to date
func Open(ctx context.Context, path string, logger *utility.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("State database ready at %s", path)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// Close closes the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ==================== Draft ====================

// SaveDraft replaces the pending draft
func (s *Store) SaveDraft(ctx context.Context, monitors []arrangement.Monitor, selected string) error {
	data, err := json.Marshal(monitors)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO draft (id, monitors, selected, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET monitors = excluded.monitors, selected = excluded.selected,
		 updated_at = excluded.updated_at`,
		string(data), selected, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the pending draft. ok is false when there is none.
func (s *Store) LoadDraft(ctx context.Context) (draft Draft, ok bool, err error) {
	var (
		data      string
		updatedAt int64
	)
	err = s.db.QueryRowContext(ctx, `SELECT monitors, selected, updated_at FROM draft WHERE id = 1`).
		Scan(&data, &draft.Selected, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("failed to load draft: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &draft.Monitors); err != nil {
		return Draft{}, false, fmt.Errorf("failed to decode draft: %w", err)
	}
	draft.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return draft, true, nil
}

// ClearDraft drops the pending draft
func (s *Store) ClearDraft(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draft`); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// ==================== History ====================

// RecordSave appends a saved arrangement to the history
func (s *Store) RecordSave(ctx context.Context, path string, monitors []arrangement.Monitor) (Entry, error) {
	data, err := json.Marshal(monitors)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode history entry: %w", err)
	}

	entry := Entry{
		ID:       uuid.NewString(),
		SavedAt:  s.now().UTC().Truncate(time.Millisecond),
		Path:     path,
		Monitors: monitors,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history (id, saved_at, path, monitors) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.SavedAt.UnixMilli(), path, string(data))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record save: %w", err)
	}

	s.logger.Debug("Recorded save %s", entry.ID)
	return entry, nil
}

// ListHistory returns the newest entries first. limit <= 0 returns all.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, saved_at, path, monitors FROM history ORDER BY saved_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetHistory finds an entry by full id or unique id prefix
func (s *Store) GetHistory(ctx context.Context, idPrefix string) (Entry, error) {
	if idPrefix == "" {
		return Entry{}, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, saved_at, path, monitors FROM history WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(idPrefix), idPrefix)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var found []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return Entry{}, err
		}
		found = append(found, entry)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, err
	}

	switch len(found) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 1:
		return found[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguous, idPrefix)
	}
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry   Entry
		savedAt int64
		data    string
	)
	if err := rows.Scan(&entry.ID, &savedAt, &entry.Path, &data); err != nil {
		return Entry{}, fmt.Errorf("failed to scan history entry: %w", err)
	}
	entry.SavedAt = time.UnixMilli(savedAt).UTC()
	if err := json.Unmarshal([]byte(data), &entry.Monitors); err != nil {
		return Entry{}, fmt.Errorf("failed to decode history entry %s: %w", entry.ID, err)
	}
	return entry, nil
}
