package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/karad-smartcity/cityanalytics/internal/model"
	"github.com/karad-smartcity/cityanalytics/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the city analytics PDF report",
	Long:  "Composes the report from the full datasets and writes it to --out (default: report.filename in the current directory).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("report"); err != nil {
			return err
		}

		ds, err := loadDatasets(ctx)
		if err != nil {
			return err
		}
		insights, err := loadInsights()
		if err != nil {
			return err
		}

		opts := reportOptions()
		opts.Now = time.Now()
		doc := report.Compose(ds, insights, opts)
		data, err := doc.Bytes()
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Report.Filename
		}
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "report: create %s", dir)
			}
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "report: write %s", out)
		}
		zap.L().Info("report written", zap.String("path", out), zap.Int("bytes", len(data)))

		if record, _ := cmd.Flags().GetBool("record"); record {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			rec := &model.ReportRecord{
				Filename:  filepath.Base(out),
				Metrics:   doc.Values,
				Insights:  doc.Insights,
				SizeBytes: len(data),
				CreatedAt: opts.Now.UTC(),
			}
			if err := st.RecordReport(ctx, rec); err != nil {
				return eris.Wrap(err, "report: record history")
			}
			zap.L().Info("report recorded", zap.String("id", rec.ID))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("out", "", "output path (default from report.filename)")
	reportCmd.Flags().Bool("record", false, "record the report in the history store")
	rootCmd.AddCommand(reportCmd)
}
