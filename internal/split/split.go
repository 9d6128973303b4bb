// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split partitions a GeoJSON FeatureCollection into part files
// that each stay under a byte budget. Features are opaque: they are held
// as raw JSON and re-emitted byte-for-byte (compacted), so any geometry
// type, property schema, or foreign member passes through unchanged.
package split

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/atlas-engine/pkg/types"
)

// Defaults for the per-part byte budget and the fixed structural
// overhead counted against it. The overhead stands in for the wrapping
// {"type":"FeatureCollection","features":[]} text; feature sizes ignore
// separator commas, so the estimate is approximate on purpose.
const (
	DefaultMaxPartBytes = 90 * 1024 * 1024
	DefaultOverhead     = 50
)

// Options configures the planner. Zero values take the defaults.
type Options struct {
	MaxPartBytes int
	Overhead     int
}

// PartInfo describes one written part file.
type PartInfo struct {
	Path     string
	Features int
	Bytes    int64
}

// Result holds the outcome of a split run.
type Result struct {
	Parts []PartInfo
}

// TotalFeatures returns the number of features across all parts.
func (r *Result) TotalFeatures() int {
	total := 0
	for _, p := range r.Parts {
		total += p.Features
	}
	return total
}

// Load reads a FeatureCollection and returns its features compacted to
// their minimal JSON text. Compacted length is the size estimate the
// planner bins on, and also exactly what the part writer emits.
func Load(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Features == nil {
		return nil, fmt.Errorf("%s has no features array", path)
	}

	features := make([]json.RawMessage, len(doc.Features))
	for i, raw := range doc.Features {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("compacting feature %d: %w", i, err)
		}
		features[i] = json.RawMessage(buf.Bytes())
	}
	return features, nil
}

// Plan bins features into parts greedily, in one pass, preserving input
// order. A part closes when the next feature would push its running size
// past the budget and the part already holds something; the non-empty
// guard means an oversized single feature still lands in a part of its
// own instead of deferring forever. The final non-empty part is always
// emitted.
func Plan(features []json.RawMessage, opts Options) [][]json.RawMessage {
	maxBytes := opts.MaxPartBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPartBytes
	}
	overhead := opts.Overhead
	if overhead <= 0 {
		overhead = DefaultOverhead
	}

	var parts [][]json.RawMessage
	var current []json.RawMessage
	size := overhead

	for _, feat := range features {
		featSize := len(feat)
		if size+featSize > maxBytes && len(current) > 0 {
			parts = append(parts, current)
			current = []json.RawMessage{feat}
			size = overhead + featSize
		} else {
			current = append(current, feat)
			size += featSize
		}
	}
	if len(current) > 0 {
		parts = append(parts, current)
	}

	return parts
}

// File splits cfg.Input into numbered part files, printing progress to
// w. Parts are named <prefix><N>.geojson from 1; an empty prefix derives
// <input stem>_part, and an empty output directory means the input's.
func File(cfg types.SplitConfig, w io.Writer) (*Result, error) {
	features, err := Load(cfg.Input)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "loaded %d features from %s\n", len(features), cfg.Input)

	parts := Plan(features, Options{
		MaxPartBytes: cfg.MaxMB * 1024 * 1024,
		Overhead:     cfg.Overhead,
	})
	fmt.Fprintf(w, "splitting into %d part(s)\n", len(parts))

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(cfg.Input)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		base := filepath.Base(cfg.Input)
		prefix = strings.TrimSuffix(base, filepath.Ext(base)) + "_part"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	result := &Result{}
	for i, part := range parts {
		path := filepath.Join(outDir, fmt.Sprintf("%s%d.geojson", prefix, i+1))
		n, err := writePart(path, part)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "wrote %s (%d features, %.2f MB)\n", path, len(part), float64(n)/(1024*1024))
		result.Parts = append(result.Parts, PartInfo{Path: path, Features: len(part), Bytes: n})
	}

	return result, nil
}

// partDocument is the shape written for each part. Only type and
// features: top-level foreign members of the input document are not
// carried into parts.
type partDocument struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// writePart writes one part via temp-file-then-rename and reports its
// size on disk.
func writePart(path string, features []json.RawMessage) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".split-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	doc := partDocument{Type: "FeatureCollection", Features: features}
	enc := json.NewEncoder(tmpFile)
	enc.SetEscapeHTML(false)
	encErr := enc.Encode(&doc)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("encoding %s: %w", path, encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return fi.Size(), nil
}
