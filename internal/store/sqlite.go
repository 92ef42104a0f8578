package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id               TEXT PRIMARY KEY,
	filename         TEXT NOT NULL,
	total_accidents  INTEGER NOT NULL,
	total_businesses INTEGER NOT NULL,
	avg_safety_index REAL,
	size_bytes       INTEGER NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS report_insights (
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	text      TEXT NOT NULL,
	PRIMARY KEY (report_id, position)
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordReport inserts rec, assigning ID and CreatedAt when unset.
func (s *SQLiteStore) RecordReport(ctx context.Context, rec *model.ReportRecord) error {
	stamp(rec)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, filename, total_accidents, total_businesses, avg_safety_index, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.Metrics.TotalAccidents, rec.Metrics.TotalBusinesses,
		safetyValue(rec.Metrics), rec.SizeBytes, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert report %s", rec.ID)
	}
	for i, text := range rec.Insights {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_insights (report_id, position, text) VALUES (?, ?, ?)`,
			rec.ID, i+1, text,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert insight %d", i+1)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit report")
}

// ListReports returns the newest reports first. Insights are not loaded.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]model.ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, total_accidents, total_businesses, avg_safety_index, size_bytes, created_at
		 FROM reports ORDER BY created_at DESC, id LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.ReportRecord{}
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate reports")
}

// GetReport returns one report with its insights.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*model.ReportRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, total_accidents, total_businesses, avg_safety_index, size_bytes, created_at
		 FROM reports WHERE id = ?`,
		id,
	)
	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "report %s", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM report_insights WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list insights %s", id)
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan insight")
		}
		rec.Insights = append(rec.Insights, text)
	}
	return rec, eris.Wrap(rows.Err(), "sqlite: iterate insights")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*model.ReportRecord, error) {
	var (
		rec    model.ReportRecord
		safety sql.NullFloat64
	)
	err := row.Scan(&rec.ID, &rec.Filename, &rec.Metrics.TotalAccidents, &rec.Metrics.TotalBusinesses,
		&safety, &rec.SizeBytes, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan report")
	}
	rec.Metrics.AvgSafetyIndex = safety.Float64
	rec.Metrics.SafetyAvailable = safety.Valid
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func stamp(rec *model.ReportRecord) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

// safetyValue stores an unavailable mean as NULL.
func safetyValue(m model.ReportMetrics) any {
	if !m.SafetyAvailable {
		return nil
	}
	return m.AvgSafetyIndex
}
