// Package journal keeps a local SQLite record of capture sessions so that
// recordings whose upload failed can be found and sent again.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"formcheck/internal/capture"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Entry is one journaled session.
type Entry struct {
	ID         string
	Exercise   string
	Form       string
	State      string
	Outcome    string
	LocalPath  string
	StoredPath string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Journal implements capture.Journal on a SQLite file.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path. Parent directories are created
// if they don't exist.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; also keeps :memory: on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// migrate is idempotent.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(CreateSessionsSQL); err != nil {
		return fmt.Errorf("creating sessions: %w", err)
	}
	if _, err := db.Exec(CreateSessionsIndexSQL); err != nil {
		return fmt.Errorf("creating sessions index: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores the latest state of a session.
func (j *Journal) Record(ctx context.Context, e capture.Event) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	ms := at.UnixMilli()
	_, err := j.db.ExecContext(ctx, UpsertSessionSQL,
		e.SessionID,
		string(e.Tag.Exercise),
		string(e.Tag.Form),
		e.State.String(),
		e.Outcome.String(),
		e.LocalPath,
		e.StoredPath,
		e.Err,
		ms,
		ms,
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", e.SessionID, err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, SelectRecentSessionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent sessions: %w", err)
	}
	return scanEntries(rows)
}

// Unsent returns sessions whose recording was saved but never confirmed by
// the receiver.
func (j *Journal) Unsent(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, SelectUnsentSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("select unsent sessions: %w", err)
	}
	return scanEntries(rows)
}

// Get loads one session by id.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(j.db.QueryRowContext(ctx, SelectSessionSQL, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session %s: %w", id, err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var created, updated int64
	if err := s.Scan(&e.ID, &e.Exercise, &e.Form, &e.State, &e.Outcome,
		&e.LocalPath, &e.StoredPath, &e.Error, &created, &updated); err != nil {
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(created)
	e.UpdatedAt = time.UnixMilli(updated)
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
