// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Report is the on-disk record of a statistics run. A run over a large
// dataset can be saved once and inspected later without re-reading the
// source file.
type Report struct {
	Input     string    `yaml:"input"`
	Top       int       `yaml:"top"`
	Timestamp time.Time `yaml:"timestamp"`
	Summary   Summary   `yaml:"summary"`
}

// WriteReport saves a summary of input to a YAML file.
func WriteReport(path, input string, s Summary) error {
	r := Report{
		Input:     input,
		Top:       len(s.Top),
		Timestamp: time.Now(),
		Summary:   s,
	}

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a previously saved report from disk.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
