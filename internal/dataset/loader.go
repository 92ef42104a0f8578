// Package dataset loads the four ward-level datasets the dashboard works on.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/karad-smartcity/cityanalytics/internal/fetcher"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

// Name identifies one of the four datasets.
type Name string

const (
	Traffic  Name = "traffic"
	Services Name = "services"
	Business Name = "business"
	Social   Name = "social"
)

// Format is the on-disk encoding of the dataset files.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// baseNames are the fixed file names, without extension, under the data dir.
var baseNames = map[Name]string{
	Traffic:  "traffic_accidents",
	Services: "public_services",
	Business: "businesses",
	Social:   "social_indicators",
}

// Columns lists the required columns per dataset.
var Columns = map[Name][]string{
	Traffic:  {"ward", "hour", "vehicle_type", "severity", "latitude", "longitude"},
	Services: {"ward", "water_issues"},
	Business: {"ward", "business_type", "count"},
	Social:   {"ward", "safety_index"},
}

// Options configures Load.
type Options struct {
	Dir    string
	Format Format
}

// Path returns the file path of the named dataset.
func (o Options) Path(n Name) string {
	format := o.Format
	if format == "" {
		format = FormatCSV
	}
	return filepath.Join(o.Dir, baseNames[n]+"."+string(format))
}

// Load reads all four datasets concurrently. Any I/O or parse failure aborts
// the whole load and is returned as a *LoadError; callers treat it as fatal.
func Load(ctx context.Context, opts Options) (*model.Datasets, error) {
	switch opts.Format {
	case "", FormatCSV, FormatXLSX:
	default:
		return nil, eris.Errorf("dataset: unsupported format %q", opts.Format)
	}

	start := time.Now()
	var ds model.Datasets

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := loadTable(gCtx, opts, Traffic, parseTraffic)
		ds.Traffic = rows
		return err
	})
	g.Go(func() error {
		rows, err := loadTable(gCtx, opts, Services, parseService)
		ds.Services = rows
		return err
	})
	g.Go(func() error {
		rows, err := loadTable(gCtx, opts, Business, parseBusiness)
		ds.Business = rows
		return err
	})
	g.Go(func() error {
		rows, err := loadTable(gCtx, opts, Social, parseSocial)
		ds.Social = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("dataset: loaded",
		zap.String("dir", opts.Dir),
		zap.Int("traffic", len(ds.Traffic)),
		zap.Int("services", len(ds.Services)),
		zap.Int("business", len(ds.Business)),
		zap.Int("social", len(ds.Social)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &ds, nil
}

func loadTable[T any](ctx context.Context, opts Options, name Name, parse func(fetcher.Record) (T, error)) ([]T, error) {
	path := opts.Path(name)
	fail := func(line int, err error) error {
		return &LoadError{Dataset: name, Path: path, Line: line, Err: err}
	}

	var (
		recCh    <-chan fetcher.Record
		errCh    <-chan error
		headerCh = make(chan []string, 1)
	)
	switch opts.Format {
	case FormatXLSX:
		if _, err := os.Stat(path); err != nil {
			return nil, fail(0, err)
		}
		recCh, errCh = fetcher.StreamXLSX(ctx, path, fetcher.XLSXOptions{HeaderCh: headerCh})
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fail(0, err)
		}
		defer f.Close() //nolint:errcheck
		recCh, errCh = fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{HeaderCh: headerCh})
	}

	var (
		rows      []T
		parseErr  error
		checkedHd bool
	)
	for rec := range recCh {
		if parseErr != nil {
			continue // drain so the reader goroutine can exit
		}
		if !checkedHd {
			checkedHd = true
			if err := requireColumns(name, <-headerCh); err != nil {
				parseErr = fail(1, err)
				continue
			}
		}
		row, err := parse(rec)
		if err != nil {
			parseErr = fail(rec.Line, err)
			continue
		}
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil && parseErr == nil {
			parseErr = fail(0, err)
		}
	}
	if parseErr != nil {
		return nil, parseErr
	}

	// A header-only file still has to carry the required columns.
	if !checkedHd {
		select {
		case hdr := <-headerCh:
			if err := requireColumns(name, hdr); err != nil {
				return nil, fail(1, err)
			}
		default:
		}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func requireColumns(name Name, header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range Columns[name] {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// Wards returns the sorted distinct wards of the traffic dataset. This is the
// source of the ward selector.
func Wards(ds *model.Datasets) []string {
	seen := make(map[string]bool)
	for _, t := range ds.Traffic {
		seen[t.Ward] = true
	}
	return sortedKeys(seen)
}

// AllWards returns the sorted union of wards across all four datasets.
func AllWards(ds *model.Datasets) []string {
	seen := make(map[string]bool)
	for _, t := range ds.Traffic {
		seen[t.Ward] = true
	}
	for _, s := range ds.Services {
		seen[s.Ward] = true
	}
	for _, b := range ds.Business {
		seen[b.Ward] = true
	}
	for _, s := range ds.Social {
		seen[s.Ward] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Summary renders row counts for log lines and CLI output.
func Summary(ds *model.Datasets) string {
	return fmt.Sprintf("traffic=%d services=%d business=%d social=%d",
		len(ds.Traffic), len(ds.Services), len(ds.Business), len(ds.Social))
}
