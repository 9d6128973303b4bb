//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Dataset paths used by the pipeline targets, matching projectDirs.
const (
	primaryCSV   = "data/chandler.csv"
	secondaryCSV = "data/modelski.csv"
	mergedOutput = "output/cities.geojson"
	partsDir     = "output/parts"
)

// Preprocess converts the census spreadsheets into the merged GeoJSON dataset.
func Preprocess() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "preprocess",
		"--primary", primaryCSV,
		"--secondary", secondaryCSV,
		"--out", mergedOutput)
}

// Split partitions the processed dataset into deployable part files.
func Split() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "split",
		"--input", mergedOutput,
		"--output-dir", partsDir)
}

// Report prints statistics over the processed dataset.
func Report() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "stats",
		"--input", mergedOutput)
}

// Index rebuilds the SQLite city index from the processed dataset.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "index", "build",
		"--input", mergedOutput)
}

// Pipeline runs the full preparation sequence: preprocess, split, index.
func Pipeline() error {
	mg.SerialDeps(Init, Preprocess, Split, Index)
	return nil
}
