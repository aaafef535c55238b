// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed merges in a SQLite database so earlier
// outputs and their contents can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deck-merger/pkg/types"
)

const (
	dbFile = "history.db"

	// DefaultLimit caps List when no limit is given.
	DefaultLimit = 20

	// timeLayout keeps stored timestamps fixed-width so they sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates stateDir/history.db and its schema.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(stateDir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS merges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			label TEXT NOT NULL,
			folder TEXT NOT NULL,
			output TEXT NOT NULL,
			converter TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS merge_items (
			merge_id INTEGER NOT NULL REFERENCES merges(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			count INTEGER NOT NULL,
			start INTEGER NOT NULL,
			PRIMARY KEY (merge_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_merges_created_at ON merges(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores rec and its contents lines in one transaction and sets
// rec.ID. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, rec *types.MergeRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO merges (kind, label, folder, output, converter, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(rec.Kind), rec.Label, rec.Folder, rec.Output, rec.Converter,
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting merge: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading merge id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO merge_items (merge_id, position, label, count, start) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range rec.Lines {
		if _, err := stmt.ExecContext(ctx, id, i, l.Label, l.Count, l.Start); err != nil {
			return fmt.Errorf("inserting item %s: %w", l.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// List returns up to limit merges, newest first, with their lines. A limit
// of zero or less means DefaultLimit.
func (s *Store) List(ctx context.Context, limit int) ([]types.MergeRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, label, folder, output, COALESCE(converter, ''), created_at
		 FROM merges ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying merges: %w", err)
	}
	defer rows.Close()

	var records []types.MergeRecord
	for rows.Next() {
		var r types.MergeRecord
		var kind, created string
		if err := rows.Scan(&r.ID, &kind, &r.Label, &r.Folder, &r.Output, &r.Converter, &created); err != nil {
			return nil, fmt.Errorf("scanning merge: %w", err)
		}
		r.Kind = types.OutputKind(kind)
		if t, err := time.Parse(timeLayout, created); err == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range records {
		lines, err := s.lines(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Lines = lines
	}
	return records, nil
}

func (s *Store) lines(ctx context.Context, mergeID int64) ([]types.ContentsLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, count, start FROM merge_items WHERE merge_id = ? ORDER BY position`, mergeID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	lines := []types.ContentsLine{}
	for rows.Next() {
		var l types.ContentsLine
		if err := rows.Scan(&l.Label, &l.Count, &l.Start); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
