// Package sqlite records triage decisions in a local SQLite database so
// past sessions can be audited.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prtriage/prtriage/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	pr_number  INTEGER NOT NULL,
	title      TEXT NOT NULL,
	action     TEXT NOT NULL,
	simple     INTEGER NOT NULL,
	ai_action  TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_pr ON decisions(pr_number);
`

// Decision is one recorded triage outcome.
type Decision struct {
	PRNumber  int
	Title     string
	Action    string
	Simple    bool
	AIAction  domain.Action
	CreatedAt time.Time
}

// Store persists triage decisions to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open decision store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init decision store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordDecision appends one decision row.
func (s *Store) RecordDecision(ctx context.Context, d Decision) error {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	simple := 0
	if d.Simple {
		simple = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (pr_number, title, action, simple, ai_action, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.PRNumber, d.Title, d.Action, simple, string(d.AIAction), createdAt.Unix())
	if err != nil {
		return fmt.Errorf("record decision for PR #%d: %w", d.PRNumber, err)
	}
	return nil
}

// ListDecisions returns the most recent decisions for a PR, newest first.
func (s *Store) ListDecisions(ctx context.Context, prNumber int) ([]Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pr_number, title, action, simple, ai_action, created_at
		 FROM decisions WHERE pr_number = ? ORDER BY created_at DESC, id DESC`,
		prNumber)
	if err != nil {
		return nil, fmt.Errorf("list decisions for PR #%d: %w", prNumber, err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var (
			d        Decision
			simple   int
			aiAction string
			unix     int64
		)
		if err := rows.Scan(&d.PRNumber, &d.Title, &d.Action, &simple, &aiAction, &unix); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		d.Simple = simple != 0
		d.AIAction = domain.Action(aiAction)
		d.CreatedAt = time.Unix(unix, 0)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
