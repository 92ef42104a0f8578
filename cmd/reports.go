package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/karad-smartcity/cityanalytics/internal/analytics"
	"github.com/karad-smartcity/cityanalytics/internal/model"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect generated report history",
}

// -- reports list --

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated reports, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		list, err := st.ListReports(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "reports list")
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}

		formatReportsList(os.Stdout, list)
		return nil
	},
}

// -- reports show --

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Show one report with its insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetReport(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "reports show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	reportsListCmd.Flags().Int("limit", 20, "max number of reports to display")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	rootCmd.AddCommand(reportsCmd)
}

// formatReportsList writes a tabular list of reports to w.
func formatReportsList(out io.Writer, list []model.ReportRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCREATED\tACCIDENTS\tBUSINESSES\tSAFETY\tSIZE")
	for _, r := range list {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		safety := analytics.NotAvailable
		if r.Metrics.SafetyAvailable {
			safety = fmt.Sprintf("%.1f", r.Metrics.AvgSafetyIndex)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			id,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Metrics.TotalAccidents,
			r.Metrics.TotalBusinesses,
			safety,
			formatBytes(r.SizeBytes),
		)
	}
	_ = w.Flush()
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
