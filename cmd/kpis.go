package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/karad-smartcity/cityanalytics/internal/analytics"
	"github.com/karad-smartcity/cityanalytics/internal/dashboard"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Print the overview KPI cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDatasets(cmd.Context())
		if err != nil {
			return err
		}
		selected, _ := cmd.Flags().GetString("ward")

		d := newDashboard(ds)
		kpis, err := d.KPIs(selected)
		if err != nil {
			return err
		}
		if cfg.Dashboard.KPIScope == dashboard.ScopeCity {
			selected = model.AllWards
		}
		formatKPIs(os.Stdout, selected, kpis)
		return nil
	},
}

// formatKPIs writes the KPI cards as a table.
func formatKPIs(out io.Writer, selected string, kpis analytics.KPIs) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "WARD\t%s\n", selected)
	for _, k := range kpis.Cards() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", k.Label, k.Display)
	}
	_ = w.Flush()
}

func init() {
	kpisCmd.Flags().String("ward", model.AllWards, "ward to compute KPIs for")
	rootCmd.AddCommand(kpisCmd)
}
