package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/atlas-engine/internal/geojson"
	"github.com/pdiddy/atlas-engine/internal/ingest"
	"github.com/pdiddy/atlas-engine/internal/merge"
	"github.com/pdiddy/atlas-engine/internal/stats"
	"github.com/pdiddy/atlas-engine/pkg/types"
)

const (
	defaultPrimary           = "chandler.csv"
	defaultPrimaryEncoding   = "cp1252"
	defaultSecondary         = "modelski.csv"
	defaultSecondaryEncoding = "latin-1"
	defaultOutput            = "cities.geojson"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert census spreadsheets into a merged GeoJSON dataset",
	Long: `Preprocess reads two wide-format census CSV files, extracts per-year
city populations, merges the two datasets with the secondary source
preferred for ancient years, and writes a GeoJSON FeatureCollection.
Rows without usable coordinates and cells without usable population
counts are dropped.`,
	RunE: runPreprocess,
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	cfg := types.PreprocessConfig{
		Primary: types.SourceConfig{
			Name:     viper.GetString("preprocess.primary.name"),
			Path:     stringFlag(cmd, "primary", "preprocess.primary.path"),
			Encoding: stringFlag(cmd, "primary-encoding", "preprocess.primary.encoding"),
		},
		Secondary: types.SourceConfig{
			Name:     viper.GetString("preprocess.secondary.name"),
			Path:     stringFlag(cmd, "secondary", "preprocess.secondary.path"),
			Encoding: stringFlag(cmd, "secondary-encoding", "preprocess.secondary.encoding"),
		},
		Output: stringFlag(cmd, "out", "preprocess.output"),
	}
	top := intFlag(cmd, "top", "preprocess.top")
	reportPath, _ := cmd.Flags().GetString("report")

	fmt.Printf("Processing %s dataset...\n", sourceName(cfg.Primary))
	primaryCities, pres, err := ingest.Source(cfg.Primary, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("  Found %d cities (%d rows, %d skipped)\n", primaryCities.Len(), pres.RowsRead, pres.RowsSkipped)

	fmt.Printf("Processing %s dataset...\n", sourceName(cfg.Secondary))
	secondaryCities, sres, err := ingest.Source(cfg.Secondary, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("  Found %d cities (%d rows, %d skipped)\n", secondaryCities.Len(), sres.RowsRead, sres.RowsSkipped)

	fmt.Println("\nMerging datasets...")
	merged := merge.Collections(primaryCities, secondaryCities)

	fmt.Println("\nDataset statistics:")
	summary := stats.Summarize(merged, top)
	stats.WriteText(os.Stdout, summary)

	fmt.Println("\nCreating GeoJSON...")
	fc := geojson.Build(merged)

	if err := geojson.WriteFile(cfg.Output, fc); err != nil {
		return err
	}

	fmt.Printf("\nSaved %d cities to %s\n", len(fc.Features), cfg.Output)
	if fi, err := os.Stat(cfg.Output); err == nil {
		fmt.Printf("File size: %.1f KB\n", float64(fi.Size())/1024)
	}

	if reportPath != "" {
		if err := stats.WriteReport(reportPath, cfg.Output, summary); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	return nil
}

// sourceName labels a source in progress output, falling back to the
// file stem when the config does not name it.
func sourceName(cfg types.SourceConfig) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	base := filepath.Base(cfg.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func init() {
	preprocessCmd.Flags().String("primary", defaultPrimary, "primary source CSV (wide format)")
	preprocessCmd.Flags().String("primary-encoding", defaultPrimaryEncoding, "primary source character encoding")
	preprocessCmd.Flags().String("secondary", defaultSecondary, "secondary source CSV (wide format)")
	preprocessCmd.Flags().String("secondary-encoding", defaultSecondaryEncoding, "secondary source character encoding")
	preprocessCmd.Flags().String("out", defaultOutput, "output GeoJSON path")
	preprocessCmd.Flags().Int("top", stats.DefaultTop, "ranking length in the statistics block")
	preprocessCmd.Flags().String("report", "", "write a YAML statistics report to this path")

	rootCmd.AddCommand(preprocessCmd)
}
