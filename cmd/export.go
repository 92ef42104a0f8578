package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/karad-smartcity/cityanalytics/internal/dashboard"
	"github.com/karad-smartcity/cityanalytics/internal/export"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a ward's dashboard series as an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDatasets(cmd.Context())
		if err != nil {
			return err
		}
		selected, _ := cmd.Flags().GetString("ward")
		if err := newDashboard(ds).Validate(dashboard.DefaultState().WithWard(selected)); err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = export.Filename(selected)
		}
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", out)
		}
		if err := export.Write(f, ds, selected); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "export: close %s", out)
		}
		zap.L().Info("workbook written", zap.String("path", out), zap.String("ward", selected))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("ward", model.AllWards, "ward to export")
	exportCmd.Flags().String("out", "", "output path (default derived from the ward)")
	rootCmd.AddCommand(exportCmd)
}
