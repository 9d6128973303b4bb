// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest parses wide-format historical population tables into
// city records. Each source CSV carries one column per recorded year
// (BC_3700, AD_100, ...) and one row per city; rows referring to the
// same city collapse into a single record keyed by name and coordinates.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/atlas-engine/pkg/types"
)

// Required and optional column names in the source tables.
const (
	colCity      = "City"
	colLatitude  = "Latitude"
	colLongitude = "Longitude"
	colCountry   = "Country"
	colOtherName = "OtherName"
	colCertainty = "Certainty"
)

const defaultCertainty = 1

// yearColumnPattern matches year columns at the start of a header name:
// BC_<digits> or AD_<digits>. The suffix is the year, negated for BC.
var yearColumnPattern = regexp.MustCompile(`^(BC|AD)_(\d+)`)

// Result holds accept/reject counts from one ingest run. Malformed rows
// and cells are tolerated, never fatal, so callers and tests can assert
// on how much of a source was usable.
type Result struct {
	// RowsRead counts data rows that created or updated a record.
	RowsRead int

	// RowsSkipped counts rows dropped because their coordinates are
	// blank or do not parse as finite numbers. A skipped row never
	// touches any record.
	RowsSkipped int

	// Accepted counts population cells admitted into a record.
	Accepted int

	// Rejected counts non-empty population cells that failed the
	// digits-and-positive rule. Blank cells are absent data, not rejects.
	Rejected int
}

// Rows returns the total number of data rows seen.
func (r Result) Rows() int {
	return r.RowsRead + r.RowsSkipped
}

// Source reads and decodes one configured CSV source. The file's bytes
// are decoded with the configured legacy charset before parsing; using
// the wrong charset silently corrupts accented place names, which is why
// the encoding is explicit per source rather than guessed.
func Source(src types.SourceConfig, w io.Writer) (*types.Collection, Result, error) {
	enc, err := Charset(src.Encoding)
	if err != nil {
		return nil, Result{}, err
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, Result{}, fmt.Errorf("opening %s: %w", src.Path, err)
	}
	defer f.Close()

	cities, res, err := Table(enc.NewDecoder().Reader(f), w)
	if err != nil {
		return nil, res, fmt.Errorf("parsing %s: %w", src.Path, err)
	}
	return cities, res, nil
}

// Table parses an already-decoded wide-format table. Warnings about
// tolerated oddities are written to w; they never fail the run.
//
// Row handling: City is required as a column but its value is not
// validated; Latitude and Longitude must parse as finite real numbers
// or the row is skipped whole. A population cell becomes an entry only if,
// after trimming, it is all decimal digits and strictly positive. Zero
// and dash-style unknown markers are dropped, not zeroed.
func Table(r io.Reader, w io.Writer) (*types.Collection, Result, error) {
	var res Result

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, res, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	cityIdx, ok := cols[colCity]
	if !ok {
		return nil, res, fmt.Errorf("missing required column %q", colCity)
	}
	latIdx := columnIndex(cols, colLatitude)
	lonIdx := columnIndex(cols, colLongitude)
	countryIdx := columnIndex(cols, colCountry)
	otherIdx := columnIndex(cols, colOtherName)
	certIdx := columnIndex(cols, colCertainty)

	yearCols := yearColumns(header)

	cities := types.NewCollection()
	line := 1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, res, fmt.Errorf("reading row: %w", err)
		}
		line++

		lat := strings.TrimSpace(field(row, latIdx))
		lon := strings.TrimSpace(field(row, lonIdx))
		if lat == "" || lon == "" {
			res.RowsSkipped++
			continue
		}
		latF, latErr := strconv.ParseFloat(lat, 64)
		lonF, lonErr := strconv.ParseFloat(lon, 64)
		if latErr != nil || lonErr != nil || !finite(latF) || !finite(lonF) {
			res.RowsSkipped++
			continue
		}

		name := field(row, cityIdx)
		key := types.Key{Name: name, Lat: latF, Lon: lonF}

		rec, ok := cities.Get(key)
		if !ok {
			rec = &types.CityRecord{
				Name:        name,
				OtherName:   field(row, otherIdx),
				Country:     field(row, countryIdx),
				Certainty:   parseCertainty(field(row, certIdx), line, w),
				Lat:         latF,
				Lon:         lonF,
				Populations: make(map[int]int),
			}
			cities.Add(rec)
		}

		for _, yc := range yearCols {
			cell := strings.TrimSpace(field(row, yc.index))
			if cell == "" {
				continue
			}
			pop, ok := parsePopulation(cell)
			if !ok {
				res.Rejected++
				continue
			}
			rec.Populations[yc.year] = pop
			res.Accepted++
		}
		res.RowsRead++
	}

	return cities, res, nil
}

type yearColumn struct {
	index int
	year  int
}

// yearColumns extracts (column, year) pairs from the header, sorted by
// year ascending. The sort gives deterministic processing order; it does
// not affect which entries end up in a record.
func yearColumns(header []string) []yearColumn {
	var cols []yearColumn
	for i, name := range header {
		m := yearColumnPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if m[1] == "BC" {
			year = -year
		}
		cols = append(cols, yearColumn{index: i, year: year})
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].year < cols[j].year })
	return cols
}

// parsePopulation accepts only unsigned decimal integers with a strictly
// positive value. No sign, no decimal point, no thousands separators.
func parsePopulation(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// finite reports whether f is a usable coordinate value. ParseFloat
// accepts "NaN" and "Inf" spellings, and a record keyed on a non-finite
// coordinate could never be looked up again.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parseCertainty parses the optional certainty cell. Empty means the
// default; an unparseable value keeps the default with a warning rather
// than failing a whole-dataset run.
func parseCertainty(s string, line int, w io.Writer) int {
	if s == "" {
		return defaultCertainty
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		fmt.Fprintf(w, "  warning: line %d: certainty %q is not an integer, using %d\n", line, s, defaultCertainty)
		return defaultCertainty
	}
	return v
}

// columnIndex returns the position of an optional column, or -1.
func columnIndex(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

// field returns the cell at idx, tolerating short rows and missing
// optional columns.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
