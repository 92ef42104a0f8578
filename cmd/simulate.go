package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/karad-smartcity/cityanalytics/internal/risk"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the what-if accident risk simulator",
	Long:  "Scores traffic density, weather and police presence: traffic*2, +5 rainy, +7 foggy, minus police. Above 15 is High, above 8 is Medium.",
	RunE: func(cmd *cobra.Command, args []string) error {
		traffic, _ := cmd.Flags().GetInt("traffic")
		police, _ := cmd.Flags().GetInt("police")
		weatherName, _ := cmd.Flags().GetString("weather")
		asJSON, _ := cmd.Flags().GetBool("json")

		weather, err := risk.ParseWeather(weatherName)
		if err != nil {
			return err
		}
		res, err := risk.Simulate(risk.Input{TrafficDensity: traffic, Weather: weather, PolicePresence: police})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		formatRiskResult(os.Stdout, res)
		return nil
	},
}

func formatRiskResult(w io.Writer, res risk.Result) {
	_, _ = fmt.Fprintf(w, "Traffic density: %d\n", res.Input.TrafficDensity)
	_, _ = fmt.Fprintf(w, "Weather:         %s\n", res.Input.Weather)
	_, _ = fmt.Fprintf(w, "Police presence: %d\n", res.Input.PolicePresence)
	_, _ = fmt.Fprintf(w, "Risk score:      %d\n", res.Score)
	_, _ = fmt.Fprintf(w, "Risk level:      %s\n", res.Level)
	_, _ = fmt.Fprintln(w, res.Message)
}

func init() {
	simulateCmd.Flags().Int("traffic", 5, "traffic density (1-10)")
	simulateCmd.Flags().String("weather", string(risk.Clear), "weather condition (Clear, Rainy, Foggy)")
	simulateCmd.Flags().Int("police", 5, "police presence (1-10)")
	simulateCmd.Flags().Bool("json", false, "print the result as JSON")
	rootCmd.AddCommand(simulateCmd)
}
