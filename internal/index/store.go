// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists the merged city dataset in SQLite and answers
// filtered lookups over it without reloading the GeoJSON output.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/atlas-engine/pkg/types"
)

const defaultDBPath = "index/cities.db"

// Store manages the city index SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the city index database at cfg.Path. It
// creates parent directories and the schema as needed.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			other_name TEXT,
			country TEXT,
			certainty INTEGER,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			min_year INTEGER,
			max_year INTEGER,
			max_population INTEGER,
			populations TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cities_country ON cities(country)`,
		`CREATE INDEX IF NOT EXISTS idx_cities_max_population ON cities(max_population)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='cities_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE cities_fts USING fts5(name, other_name, country, content=cities, content_rowid=rowid)`,
			`CREATE TRIGGER cities_ai AFTER INSERT ON cities BEGIN
				INSERT INTO cities_fts(rowid, name, other_name, country) VALUES (new.rowid, new.name, new.other_name, new.country);
			END`,
			`CREATE TRIGGER cities_ad AFTER DELETE ON cities BEGIN
				INSERT INTO cities_fts(cities_fts, rowid, name, other_name, country) VALUES('delete', old.rowid, old.name, old.other_name, old.country);
			END`,
			`CREATE TRIGGER cities_au AFTER UPDATE ON cities BEGIN
				INSERT INTO cities_fts(cities_fts, rowid, name, other_name, country) VALUES('delete', old.rowid, old.name, old.other_name, old.country);
				INSERT INTO cities_fts(rowid, name, other_name, country) VALUES (new.rowid, new.name, new.other_name, new.country);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Build replaces the index contents with the features of fc. Old rows
// are deleted and new rows inserted in a single transaction, so a
// failed rebuild leaves the previous index intact. It returns the
// number of cities indexed.
func (s *Store) Build(ctx context.Context, fc *types.FeatureCollection) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cities`); err != nil {
		return 0, fmt.Errorf("clearing index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cities (key, name, other_name, country, certainty, latitude, longitude,
			min_year, max_year, max_population, populations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, feat := range fc.Features {
		props := feat.Properties
		lon, lat := feat.Geometry.Coordinates[0], feat.Geometry.Coordinates[1]
		key := types.Key{Name: props.Name, Lat: lat, Lon: lon}
		populationsJSON, _ := json.Marshal(props.Populations)

		_, err := stmt.ExecContext(ctx,
			key.String(), props.Name, props.OtherName, props.Country, props.Certainty,
			lat, lon, props.MinYear, props.MaxYear, props.MaxPopulation,
			string(populationsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting city %s: %w", props.Name, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return count, nil
}

// Count returns the number of indexed cities.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM cities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cities: %w", err)
	}
	return n, nil
}
