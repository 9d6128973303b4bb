package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/atlas-engine/internal/geojson"
	"github.com/pdiddy/atlas-engine/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report statistics over a processed city dataset",
	Long: `Stats loads a processed GeoJSON FeatureCollection and reports dataset
totals, the covered year range, and the largest cities by peak
population. Output formats: table (default), json, or yaml.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	input := stringFlag(cmd, "input", "stats.input")
	top := intFlag(cmd, "top", "stats.top")
	format, _ := cmd.Flags().GetString("format")
	reportPath, _ := cmd.Flags().GetString("report")

	fc, err := geojson.ReadFile(input)
	if err != nil {
		return err
	}
	summary := stats.Summarize(geojson.Records(fc), top)

	switch format {
	case "table", "":
		stats.WriteText(os.Stdout, summary)
	case "json":
		if err := stats.WriteJSON(os.Stdout, summary); err != nil {
			return err
		}
	case "yaml":
		if err := stats.WriteYAML(os.Stdout, summary); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if reportPath != "" {
		if err := stats.WriteReport(reportPath, input, summary); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", reportPath)
	}

	return nil
}

func init() {
	statsCmd.Flags().String("input", defaultOutput, "GeoJSON FeatureCollection to summarize")
	statsCmd.Flags().Int("top", stats.DefaultTop, "ranking length")
	statsCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	statsCmd.Flags().String("report", "", "write a YAML statistics report to this path")

	rootCmd.AddCommand(statsCmd)
}
