// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the indexed cities to dir/export.yaml. It supports
// the same filters as Query.
func (s *Store) ExportYAML(ctx context.Context, dir string, opts QueryOptions) error {
	cities, err := s.exportCities(ctx, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	data, err := yaml.Marshal(cities)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "export.yaml"), data, 0o644)
}

// ExportJSON writes the indexed cities to dir/export.json. It supports
// the same filters as Query.
func (s *Store) ExportJSON(ctx context.Context, dir string, opts QueryOptions) error {
	cities, err := s.exportCities(ctx, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	data, err := json.MarshalIndent(cities, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "export.json"), data, 0o644)
}

func (s *Store) exportCities(ctx context.Context, opts QueryOptions) ([]City, error) {
	opts.MaxResults = exportLimit
	cities, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return cities, nil
}
