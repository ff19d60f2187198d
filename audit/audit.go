/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package audit keeps an append-only SQLite log of tool invocations.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one finished invocation.
type Entry struct {
	ID        string
	Tool      string
	StartedAt time.Time
	Duration  time.Duration
	// Outcome is "ok" or an error kind such as "validation".
	Outcome string
	Error   string
}

// Store writes entries to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS invocations (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_started_at ON invocations(started_at);`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init audit schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Record appends e.
func (s *Store) Record(ctx context.Context, e Entry) error {
	var errText sql.NullString
	if e.Error != "" {
		errText = sql.NullString{String: e.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, tool, started_at, duration_ms, outcome, error) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.StartedAt.UTC().Format(timeLayout), e.Duration.Milliseconds(), e.Outcome, errText)
	if err != nil {
		return fmt.Errorf("insert invocation %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, started_at, duration_ms, outcome, error FROM invocations ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			started string
			ms      int64
			errText sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Tool, &started, &ms, &e.Outcome, &errText); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		e.Error = errText.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
