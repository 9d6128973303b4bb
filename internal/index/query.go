// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QueryOptions holds parameters for city lookups.
type QueryOptions struct {
	// Name is the FTS5 full-text search string, matched against city
	// names, alternate names, and countries.
	Name string

	// Country filters by country, case-insensitively.
	Country string

	// Year keeps only cities with a population entry for that year.
	// Nil means no year filter.
	Year *int

	// MinPopulation keeps only cities whose peak population reaches
	// this value.
	MinPopulation int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Name == "" && q.Country == "" && q.Year == nil && q.MinPopulation == 0
}

// City is one indexed city row.
type City struct {
	Key           string      `json:"key" yaml:"key"`
	Name          string      `json:"name" yaml:"name"`
	OtherName     string      `json:"other_name" yaml:"other_name"`
	Country       string      `json:"country" yaml:"country"`
	Certainty     int         `json:"certainty" yaml:"certainty"`
	Latitude      float64     `json:"latitude" yaml:"latitude"`
	Longitude     float64     `json:"longitude" yaml:"longitude"`
	MinYear       int         `json:"min_year" yaml:"min_year"`
	MaxYear       int         `json:"max_year" yaml:"max_year"`
	MaxPopulation int         `json:"max_population" yaml:"max_population"`
	Populations   map[int]int `json:"populations" yaml:"populations"`
}

// Query looks up cities with optional full-text search and structured
// filters. Full-text queries are ranked by relevance; structured-only
// queries are sorted by peak population, largest first.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]City, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Name != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.key, c.name, c.other_name, c.country, c.certainty,
				c.latitude, c.longitude, c.min_year, c.max_year,
				c.max_population, c.populations
			FROM cities_fts
			JOIN cities c ON c.rowid = cities_fts.rowid
			WHERE cities_fts MATCH ?`)
		args = append(args, opts.Name)
	} else {
		qb.WriteString(
			`SELECT c.key, c.name, c.other_name, c.country, c.certainty,
				c.latitude, c.longitude, c.min_year, c.max_year,
				c.max_population, c.populations
			FROM cities c
			WHERE 1=1`)
	}

	if opts.Country != "" {
		qb.WriteString(` AND c.country = ? COLLATE NOCASE`)
		args = append(args, opts.Country)
	}

	if opts.Year != nil {
		// Population years are the keys of the stored JSON object.
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(c.populations) WHERE json_each.key = ?)`)
		args = append(args, strconv.Itoa(*opts.Year))
	}

	if opts.MinPopulation > 0 {
		qb.WriteString(` AND c.max_population >= ?`)
		args = append(args, opts.MinPopulation)
	}

	if useFTS {
		qb.WriteString(` ORDER BY cities_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.max_population DESC, c.name`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying city index: %w", err)
	}
	defer rows.Close()

	var results []City
	for rows.Next() {
		var (
			city      City
			otherName sql.NullString
			country   sql.NullString
			popsJSON  string
		)

		if err := rows.Scan(
			&city.Key, &city.Name, &otherName, &country, &city.Certainty,
			&city.Latitude, &city.Longitude, &city.MinYear, &city.MaxYear,
			&city.MaxPopulation, &popsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if otherName.Valid {
			city.OtherName = otherName.String
		}
		if country.Valid {
			city.Country = country.String
		}
		if err := json.Unmarshal([]byte(popsJSON), &city.Populations); err != nil {
			return nil, fmt.Errorf("parsing populations for %s: %w", city.Key, err)
		}

		results = append(results, city)
	}

	return results, rows.Err()
}
