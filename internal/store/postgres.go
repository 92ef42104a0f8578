package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/karad-smartcity/cityanalytics/internal/db"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	insertReportSQL = `INSERT INTO reports (id, filename, total_accidents, total_businesses, avg_safety_index, size_bytes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	listReportsSQL  = `SELECT id, filename, total_accidents, total_businesses, avg_safety_index, size_bytes, created_at FROM reports ORDER BY created_at DESC, id LIMIT $1`
	getReportSQL    = `SELECT id, filename, total_accidents, total_businesses, avg_safety_index, size_bytes, created_at FROM reports WHERE id = $1`
	listInsightsSQL = `SELECT text FROM report_insights WHERE report_id = $1 ORDER BY position`
)

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"insert_report": insertReportSQL,
	"list_reports":  listReportsSQL,
	"get_report":    getReportSQL,
	"list_insights": listInsightsSQL,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := retryConnect(ctx, DefaultRetry, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	filename         TEXT NOT NULL,
	total_accidents  INTEGER NOT NULL,
	total_businesses INTEGER NOT NULL,
	avg_safety_index DOUBLE PRECISION,
	size_bytes       INTEGER NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS report_insights (
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	text      TEXT NOT NULL,
	PRIMARY KEY (report_id, position)
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// RecordReport inserts rec and COPYs its insight lines in one transaction.
func (s *PostgresStore) RecordReport(ctx context.Context, rec *model.ReportRecord) error {
	stamp(rec)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, insertReportSQL,
		rec.ID, rec.Filename, rec.Metrics.TotalAccidents, rec.Metrics.TotalBusinesses,
		safetyValue(rec.Metrics), rec.SizeBytes, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert report %s", rec.ID)
	}

	rows := make([][]any, len(rec.Insights))
	for i, text := range rec.Insights {
		rows[i] = []any{rec.ID, i + 1, text}
	}
	if _, err := db.CopyFrom(ctx, tx, "report_insights", []string{"report_id", "position", "text"}, rows); err != nil {
		return eris.Wrap(err, "postgres: copy insights")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit report")
}

// ListReports returns the newest reports first. Insights are not loaded.
func (s *PostgresStore) ListReports(ctx context.Context, limit int) ([]model.ReportRecord, error) {
	rows, err := s.pool.Query(ctx, listReportsSQL, listLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	out := []model.ReportRecord{}
	for rows.Next() {
		rec, err := scanPgReport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reports")
}

// GetReport returns one report with its insights.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*model.ReportRecord, error) {
	rec, err := scanPgReport(s.pool.QueryRow(ctx, getReportSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "report %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get report %s", id)
	}

	rows, err := s.pool.Query(ctx, listInsightsSQL, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list insights %s", id)
	}
	texts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: scan insights %s", id)
	}
	if len(texts) > 0 {
		rec.Insights = texts
	}
	return rec, nil
}

func scanPgReport(row pgx.Row) (*model.ReportRecord, error) {
	var (
		rec    model.ReportRecord
		safety *float64
	)
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.Metrics.TotalAccidents, &rec.Metrics.TotalBusinesses,
		&safety, &rec.SizeBytes, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if safety != nil {
		rec.Metrics.AvgSafetyIndex = *safety
		rec.Metrics.SafetyAvailable = true
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
