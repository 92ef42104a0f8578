package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/karad-smartcity/cityanalytics/internal/dashboard"
	"github.com/karad-smartcity/cityanalytics/internal/dataset"
	"github.com/karad-smartcity/cityanalytics/internal/geo"
	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/report"
	"github.com/karad-smartcity/cityanalytics/internal/store"
)

// loadDatasets loads the four datasets once. A load failure is logged with
// the dataset, file and row it came from and returned to abort the command.
func loadDatasets(ctx context.Context) (*model.Datasets, error) {
	if err := cfg.Validate("data"); err != nil {
		return nil, err
	}
	ds, err := dataset.Load(ctx, dataset.Options{Dir: cfg.Data.Dir, Format: dataset.Format(cfg.Data.Format)})
	if err != nil {
		if le, ok := dataset.AsLoadError(err); ok {
			zap.L().Error("dataset load failed",
				zap.String("dataset", string(le.Dataset)),
				zap.String("path", le.Path),
				zap.Int("line", le.Line),
				zap.Bool("missing", le.Missing()),
				zap.Error(le.Err),
			)
		}
		return nil, err
	}
	return ds, nil
}

func newDashboard(ds *model.Datasets) *dashboard.Dashboard {
	return dashboard.New(ds, dashboard.Options{
		KPIScope:  cfg.Dashboard.KPIScope,
		MapCenter: geo.LatLon{Lat: cfg.Dashboard.MapLat, Lon: cfg.Dashboard.MapLon},
		MapZoom:   cfg.Dashboard.MapZoom,
	})
}

// initStore opens and migrates the report history store.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func reportOptions() report.Options {
	return report.Options{Title: cfg.Report.Title, Locale: cfg.Report.Locale}
}

func loadInsights() ([]string, error) {
	return report.LoadInsights(cfg.Report.InsightsFile)
}
