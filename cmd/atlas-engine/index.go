// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/atlas-engine/internal/geojson"
	"github.com/pdiddy/atlas-engine/internal/index"
	"github.com/pdiddy/atlas-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the city index (build, query, export)",
	Long: `Index manages a local SQLite database built from the processed GeoJSON
output. Use subcommands to rebuild the database, query cities, or
export.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the city index from a GeoJSON FeatureCollection",
	Long: `Build loads a processed FeatureCollection and rebuilds the SQLite
database from it, replacing any previous contents. City names are
indexed with FTS5 for full-text lookup.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	input := stringFlag(cmd, "input", "index.input")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	fc, err := geojson.ReadFile(input)
	if err != nil {
		return err
	}

	count, err := store.Build(context.Background(), fc)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d cities\n", count)
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query [name]",
	Short: "Query the city index with full-text search and filters",
	Long: `Query searches indexed cities using FTS5 full-text search over names,
structured filters (country, year, minimum population), or a
combination of both.`,
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a name, --country, --year, or --min-population")
	}

	results, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []index.City, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-20s  %10s  %6s  %6s\n",
		"Rank", "Name", "Country", "Peak", "From", "To")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for i, c := range results {
		name := c.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		country := c.Country
		if len(country) > 20 {
			country = country[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-20s  %10d  %6d  %6d\n",
			i+1, name, country, c.MaxPopulation, c.MinYear, c.MaxYear)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the city index to YAML or JSON",
	Long: `Export writes the indexed cities (or a filtered subset) to export.yaml
or export.json in the output directory. Supports the same filter flags
as query for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("output-dir")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), outDir, opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", filepath.Join(outDir, "export.yaml"))
	case "json":
		if err := store.ExportJSON(context.Background(), outDir, opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", filepath.Join(outDir, "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	dbPath := stringFlag(cmd, "db", "index.path")
	maxResults := intFlag(cmd, "max-results", "index.max_results")

	return types.IndexConfig{
		Path:       dbPath,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	name, _ := cmd.Flags().GetString("name")
	if name == "" && len(args) > 0 {
		name = strings.Join(args, " ")
	}

	country, _ := cmd.Flags().GetString("country")
	minPop, _ := cmd.Flags().GetInt("min-population")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := index.QueryOptions{
		Name:          name,
		Country:       country,
		MinPopulation: minPop,
		MaxResults:    limit,
	}
	if cmd.Flags().Changed("year") {
		year, _ := cmd.Flags().GetInt("year")
		opts.Year = &year
	}
	return opts
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("db", "index/cities.db", "path to the index database")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Build flags.
	indexBuildCmd.Flags().String("input", defaultOutput, "GeoJSON FeatureCollection to index")

	// Query flags.
	indexQueryCmd.Flags().String("name", "", "full-text search over city names")
	indexQueryCmd.Flags().String("country", "", "filter by country")
	indexQueryCmd.Flags().Int("year", 0, "filter by a year with a population entry (negative = BC)")
	indexQueryCmd.Flags().Int("min-population", 0, "filter by minimum peak population")
	indexQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("output-dir", "index", "directory for the export file")
	indexExportCmd.Flags().String("name", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("country", "", "filter by country for partial export")
	indexExportCmd.Flags().Int("year", 0, "filter by year for partial export")
	indexExportCmd.Flags().Int("min-population", 0, "filter by minimum peak population for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum cities to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
