// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geojson emits merged city collections as GeoJSON point
// features and reads emitted documents back for downstream tooling.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/atlas-engine/pkg/types"
)

// Build converts a collection into a FeatureCollection. Records with an
// empty population series are dropped here; they took part in the merge
// but have nothing to plot. Feature order is the collection's insertion
// order, never re-sorted.
func Build(c *types.Collection) *types.FeatureCollection {
	fc := &types.FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]types.Feature, 0, c.Len()),
	}

	for _, rec := range c.Records() {
		if len(rec.Populations) == 0 {
			continue
		}

		minYear, maxYear, maxPop := seriesBounds(rec.Populations)

		fc.Features = append(fc.Features, types.Feature{
			Type: "Feature",
			Geometry: types.PointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{rec.Lon, rec.Lat},
			},
			Properties: types.CityProperties{
				Name:          rec.Name,
				OtherName:     rec.OtherName,
				Country:       rec.Country,
				Certainty:     rec.Certainty,
				MinYear:       minYear,
				MaxYear:       maxYear,
				MaxPopulation: maxPop,
				Populations:   rec.Populations,
			},
		})
	}

	return fc
}

// seriesBounds returns the min and max year keys and the max population
// value. The series must be non-empty.
func seriesBounds(populations map[int]int) (minYear, maxYear, maxPop int) {
	first := true
	for year, pop := range populations {
		if first {
			minYear, maxYear = year, year
			first = false
		} else if year < minYear {
			minYear = year
		} else if year > maxYear {
			maxYear = year
		}
		if pop > maxPop {
			maxPop = pop
		}
	}
	return minYear, maxYear, maxPop
}

// Records rebuilds a collection from an emitted FeatureCollection, in
// feature order. Derived properties are recomputed by consumers; only
// the source fields and the population series carry over.
func Records(fc *types.FeatureCollection) *types.Collection {
	cities := types.NewCollection()
	for _, f := range fc.Features {
		p := f.Properties
		rec := &types.CityRecord{
			Name:        p.Name,
			OtherName:   p.OtherName,
			Country:     p.Country,
			Certainty:   p.Certainty,
			Lat:         f.Geometry.Coordinates[1],
			Lon:         f.Geometry.Coordinates[0],
			Populations: p.Populations,
		}
		if rec.Populations == nil {
			rec.Populations = make(map[int]int)
		}
		cities.Add(rec)
	}
	return cities
}

// WriteFile serializes fc to path as one compact JSON document. The
// write goes to a temp file in the same directory and is renamed into
// place, so a failed run never leaves a truncated document. HTML
// escaping is off: place names keep their verbatim UTF-8.
func WriteFile(path string, fc *types.FeatureCollection) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".geojson-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	enc := json.NewEncoder(tmpFile)
	enc.SetEscapeHTML(false)
	encErr := enc.Encode(fc)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("encoding %s: %w", path, encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadFile loads an emitted FeatureCollection.
func ReadFile(path string) (*types.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var fc types.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fc, nil
}
