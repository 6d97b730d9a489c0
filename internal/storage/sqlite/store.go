// Package sqlite provides a SQLite-backed analysis report store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pefman/eots-battle/internal/stats"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	created INTEGER NOT NULL,
	intel_condition TEXT NOT NULL,
	reaction_player TEXT NOT NULL,
	allied_win REAL NOT NULL,
	japan_win REAL NOT NULL,
	body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_created ON reports (created DESC);
`

// Store persists reports in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ stats.ReportStore = (*Store)(nil)

// Open opens the database at path and creates the schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// each connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts or replaces a report.
func (s *Store) Save(ctx context.Context, r stats.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("report id is required")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (id, created, intel_condition, reaction_player, allied_win, japan_win, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Created,
		r.Params.Intel.String(),
		r.Params.Reaction.String(),
		r.Summary.AlliedWin,
		r.Summary.JapanWin,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get loads one report with its rows.
func (s *Store) Get(ctx context.Context, id string) (stats.Report, error) {
	if err := ctx.Err(); err != nil {
		return stats.Report{}, err
	}
	var body string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.Report{}, stats.ErrNotFound
	}
	if err != nil {
		return stats.Report{}, fmt.Errorf("get report: %w", err)
	}
	return decode(body)
}

// List returns up to limit reports, newest first, without their rows.
func (s *Store) List(ctx context.Context, limit int) ([]stats.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT body FROM reports ORDER BY created DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []stats.Report
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r, err := decode(body)
		if err != nil {
			return nil, err
		}
		r.Rows = nil
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func decode(body string) (stats.Report, error) {
	var r stats.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return stats.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}
