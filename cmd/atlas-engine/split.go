package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/atlas-engine/internal/split"
	"github.com/pdiddy/atlas-engine/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a GeoJSON FeatureCollection into size-bounded parts",
	Long: `Split reads a GeoJSON FeatureCollection and rewrites it as numbered
part files that each stay under a byte budget, preserving feature order
and content. Hosting targets cap single-file sizes; the parts can be
deployed where the whole collection cannot.`,
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg := types.SplitConfig{
		Input:     stringFlag(cmd, "input", "split.input"),
		OutputDir: stringFlag(cmd, "output-dir", "split.output_dir"),
		Prefix:    stringFlag(cmd, "prefix", "split.prefix"),
		MaxMB:     intFlag(cmd, "max-mb", "split.max_mb"),
		Overhead:  intFlag(cmd, "overhead", "split.overhead"),
	}
	if cfg.Input == "" {
		return fmt.Errorf("input file required: provide --input or set split.input in the config")
	}

	result, err := split.File(cfg, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\n%d part(s), %d features\n", len(result.Parts), result.TotalFeatures())
	return nil
}

func init() {
	splitCmd.Flags().String("input", "", "GeoJSON FeatureCollection to split")
	splitCmd.Flags().String("output-dir", "", "directory for part files (default: input's directory)")
	splitCmd.Flags().String("prefix", "", "part filename prefix (default: input name + _part)")
	splitCmd.Flags().Int("max-mb", 90, "maximum part size in MB")
	splitCmd.Flags().Int("overhead", split.DefaultOverhead, "bytes reserved per part for the collection wrapper")

	rootCmd.AddCommand(splitCmd)
}
