// Package store persists analyzed reports to SQLite so previously
// uploaded reports can be listed and reviewed.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("store: report not found")

// Report is a row in the reports table. Analysis and Recommendation hold
// the JSON-encoded pipeline output; the store does not interpret them.
type Report struct {
	ID               int64  `json:"id"`
	Filename         string `json:"filename"`
	Format           string `json:"format"`
	Method           string `json:"method"`
	IsEmergency      bool   `json:"is_emergency"`
	EmergencyMessage string `json:"emergency_message"`
	LocationName     string `json:"location_name"`
	StateName        string `json:"state_name"`
	Analysis         string `json:"analysis"`
	Recommendation   string `json:"recommendation"`
	CreatedAt        string `json:"created_at"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	format TEXT NOT NULL,
	method TEXT NOT NULL DEFAULT '',
	is_emergency INTEGER NOT NULL DEFAULT 0,
	emergency_message TEXT NOT NULL DEFAULT '',
	location_name TEXT NOT NULL DEFAULT '',
	state_name TEXT NOT NULL DEFAULT '',
	analysis TEXT NOT NULL DEFAULT '[]',
	recommendation TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

// Store wraps the SQLite database for report history.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the report database at the given path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// SaveReport inserts a report and returns its ID.
func (s *Store) SaveReport(ctx context.Context, r Report) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports
			(filename, format, method, is_emergency, emergency_message,
			 location_name, state_name, analysis, recommendation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Filename, r.Format, r.Method, boolToInt(r.IsEmergency), r.EmergencyMessage,
		r.LocationName, r.StateName, r.Analysis, r.Recommendation)
	if err != nil {
		return 0, fmt.Errorf("inserting report: %w", err)
	}
	return res.LastInsertId()
}

const reportColumns = `id, filename, format, method, is_emergency, emergency_message,
	location_name, state_name, analysis, recommendation, created_at`

// ListReports returns all reports, newest first.
func (s *Store) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetReport returns a single report by ID.
func (s *Store) GetReport(ctx context.Context, id int64) (Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	return r, err
}

// DeleteReport removes a report by ID.
func (s *Store) DeleteReport(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (Report, error) {
	var r Report
	var emergency int
	err := sc.Scan(&r.ID, &r.Filename, &r.Format, &r.Method, &emergency,
		&r.EmergencyMessage, &r.LocationName, &r.StateName,
		&r.Analysis, &r.Recommendation, &r.CreatedAt)
	if err != nil {
		return Report{}, err
	}
	r.IsEmergency = emergency != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
