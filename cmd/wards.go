package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karad-smartcity/cityanalytics/internal/dataset"
)

var wardsCmd = &cobra.Command{
	Use:   "wards",
	Short: "List the wards of the ward selector",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDatasets(cmd.Context())
		if err != nil {
			return err
		}
		wards := newDashboard(ds).WardOptions()
		if all, _ := cmd.Flags().GetBool("all-datasets"); all {
			wards = dataset.AllWards(ds)
		}
		for _, w := range wards {
			fmt.Fprintln(os.Stdout, w)
		}
		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			fmt.Fprintln(os.Stderr, dataset.Summary(ds))
		}
		return nil
	},
}

func init() {
	wardsCmd.Flags().Bool("all-datasets", false, "list wards found in any dataset, not just traffic")
	wardsCmd.Flags().Bool("summary", false, "print dataset row counts to stderr")
	rootCmd.AddCommand(wardsCmd)
}
