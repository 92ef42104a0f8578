// Package store persists the history of generated reports. The datasets
// themselves are never written anywhere.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/karad-smartcity/cityanalytics/internal/config"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// ErrNotFound is returned when a report id is unknown.
var ErrNotFound = eris.New("store: not found")

// DefaultListLimit caps ListReports when no limit is given.
const DefaultListLimit = 50

// Store defines the persistence interface for report history.
type Store interface {
	RecordReport(ctx context.Context, rec *model.ReportRecord) error
	ListReports(ctx context.Context, limit int) ([]model.ReportRecord, error)
	GetReport(ctx context.Context, id string) (*model.ReportRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	case "none", "":
		return Noop{}, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// Noop discards every report. Used when store.driver is "none".
type Noop struct{}

func (Noop) RecordReport(context.Context, *model.ReportRecord) error { return nil }

func (Noop) ListReports(context.Context, int) ([]model.ReportRecord, error) {
	return []model.ReportRecord{}, nil
}

func (Noop) GetReport(_ context.Context, id string) (*model.ReportRecord, error) {
	return nil, eris.Wrapf(ErrNotFound, "report %s", id)
}

func (Noop) Migrate(context.Context) error { return nil }

func (Noop) Close() error { return nil }
