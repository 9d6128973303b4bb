// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats summarizes a city collection: totals, the year range
// covered, and a ranking of cities by their peak population.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/atlas-engine/pkg/types"
)

// DefaultTop is the ranking length when the caller does not choose one.
const DefaultTop = 10

// TopCity is one row of the peak-population ranking.
type TopCity struct {
	Name       string `json:"name" yaml:"name"`
	Country    string `json:"country" yaml:"country"`
	Year       int    `json:"year" yaml:"year"`
	Population int    `json:"population" yaml:"population"`
}

// Summary aggregates a collection. Cities and Datapoints count every
// record; MinYear, MaxYear, and Top consider only records that carry at
// least one population entry.
type Summary struct {
	Cities     int       `json:"cities" yaml:"cities"`
	Datapoints int       `json:"datapoints" yaml:"datapoints"`
	MinYear    int       `json:"min_year" yaml:"min_year"`
	MaxYear    int       `json:"max_year" yaml:"max_year"`
	Top        []TopCity `json:"top" yaml:"top"`
}

// Summarize computes a Summary over c with a ranking of at most topN
// cities. A city's peak is its highest population; when several years
// share the peak the earliest year is reported. Ranking ties keep the
// collection's insertion order.
func Summarize(c *types.Collection, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTop
	}

	s := Summary{Cities: c.Len()}
	first := true
	var tops []TopCity

	for _, rec := range c.Records() {
		s.Datapoints += len(rec.Populations)
		if len(rec.Populations) == 0 {
			continue
		}

		years := make([]int, 0, len(rec.Populations))
		for year := range rec.Populations {
			years = append(years, year)
		}
		sort.Ints(years)

		if first {
			s.MinYear = years[0]
			s.MaxYear = years[len(years)-1]
			first = false
		} else {
			if years[0] < s.MinYear {
				s.MinYear = years[0]
			}
			if last := years[len(years)-1]; last > s.MaxYear {
				s.MaxYear = last
			}
		}

		peakYear := years[0]
		peakPop := rec.Populations[peakYear]
		for _, year := range years[1:] {
			if pop := rec.Populations[year]; pop > peakPop {
				peakYear, peakPop = year, pop
			}
		}
		tops = append(tops, TopCity{
			Name:       rec.Name,
			Country:    rec.Country,
			Year:       peakYear,
			Population: peakPop,
		})
	}

	sort.SliceStable(tops, func(i, j int) bool {
		return tops[i].Population > tops[j].Population
	})
	if len(tops) > topN {
		tops = tops[:topN]
	}
	s.Top = tops

	return s
}

// WriteText renders s as the human-readable table. A summary with no
// data points produces no output at all.
func WriteText(w io.Writer, s Summary) {
	if s.Datapoints == 0 {
		return
	}

	fmt.Fprintf(w, "Total cities: %d\n", s.Cities)
	fmt.Fprintf(w, "Total data points: %d\n", s.Datapoints)
	fmt.Fprintf(w, "Year range: %d to %d\n", s.MinYear, s.MaxYear)

	if len(s.Top) == 0 {
		return
	}
	fmt.Fprintf(w, "\nTop %d cities by max population:\n", len(s.Top))
	p := message.NewPrinter(language.English)
	for _, t := range s.Top {
		fmt.Fprintf(w, "  %s (%s): %s in %d\n", t.Name, t.Country, p.Sprintf("%d", t.Population), t.Year)
	}
}

// WriteJSON renders s as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

// WriteYAML renders s as YAML.
func WriteYAML(w io.Writer, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
