// Copyright 2026 Texelvirt contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/logstore/store.go
// Summary: SQLite-backed line store used as a row source for virtual
// scrolling. Lines are addressed by a dense zero-based index so a
// viewer can fetch exactly the visible slice.

package logstore

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS lines (
	idx     INTEGER PRIMARY KEY,
	content TEXT NOT NULL
);
`

// Store holds log lines in a SQLite database, indexed densely from 0.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	next int64
}

// Open opens (creating if needed) the line store at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("logstore: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("logstore: create schema: %w", err)
	}

	var next sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(idx) + 1 FROM lines`).Scan(&next); err != nil {
		db.Close()
		return nil, fmt.Errorf("logstore: read line count: %w", err)
	}

	s := &Store{db: db}
	if next.Valid {
		s.next = next.Int64
	}
	return s, nil
}

// Append adds lines to the end of the store.
func (s *Store) Append(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("logstore: begin append: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO lines (idx, content) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("logstore: prepare append: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.Exec(s.next, line); err != nil {
			tx.Rollback()
			return fmt.Errorf("logstore: insert line %d: %w", s.next, err)
		}
		s.next++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("logstore: commit append: %w", err)
	}
	return nil
}

// Count returns the number of stored lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.next)
}

// Line returns the line at the given index, or "" when out of range.
func (s *Store) Line(index int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || int64(index) >= s.next {
		return ""
	}
	var content string
	err := s.db.QueryRow(`SELECT content FROM lines WHERE idx = ?`, index).Scan(&content)
	if err != nil {
		return ""
	}
	return content
}

// Lines returns lines in the half-open range [from, to).
func (s *Store) Lines(from, to int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 {
		from = 0
	}
	if int64(to) > s.next {
		to = int(s.next)
	}
	if from >= to {
		return nil, nil
	}

	rows, err := s.db.Query(`SELECT content FROM lines WHERE idx >= ? AND idx < ? ORDER BY idx`, from, to)
	if err != nil {
		return nil, fmt.Errorf("logstore: query lines [%d,%d): %w", from, to, err)
	}
	defer rows.Close()

	out := make([]string, 0, to-from)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("logstore: scan line: %w", err)
		}
		out = append(out, content)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
