package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/atlas-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()

	cfg := types.IndexConfig{
		Path:       filepath.Join(t.TempDir(), "index", "cities.db"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func feature(name, otherName, country string, lat, lon float64, pops map[int]int) types.Feature {
	minYear, maxYear, maxPop := 0, 0, 0
	first := true
	for year, pop := range pops {
		if first {
			minYear, maxYear, maxPop = year, year, pop
			first = false
			continue
		}
		if year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
		if pop > maxPop {
			maxPop = pop
		}
	}

	return types.Feature{
		Type:     "Feature",
		Geometry: types.PointGeometry{Type: "Point", Coordinates: [2]float64{lon, lat}},
		Properties: types.CityProperties{
			Name:          name,
			OtherName:     otherName,
			Country:       country,
			Certainty:     1,
			MinYear:       minYear,
			MaxYear:       maxYear,
			MaxPopulation: maxPop,
			Populations:   pops,
		},
	}
}

func sampleCollection() *types.FeatureCollection {
	return &types.FeatureCollection{
		Type: "FeatureCollection",
		Features: []types.Feature{
			feature("Rome", "Roma", "Italy", 41.9, 12.5, map[int]int{1800: 650000, 1900: 1234567}),
			feature("Baghdad", "", "Iraq", 33.3, 44.4, map[int]int{800: 700000, 900: 900000}),
			feature("Ur", "", "Iraq", 30.96, 46.1, map[int]int{-800: 65000}),
			feature("Cordoba", "Qurtuba", "Spain", 37.9, -4.78, map[int]int{1000: 450000}),
		},
	}
}

func buildSample(t *testing.T, store *Store) {
	t.Helper()
	n, err := store.Build(context.Background(), sampleCollection())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("Build indexed %d cities, want 4", n)
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testSetup(t)

	tables := []string{"cities", "cities_fts"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "cities.db")

	store, err := NewStore(types.IndexConfig{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

func TestNewStoreDefaultMaxResults(t *testing.T) {
	store, err := NewStore(types.IndexConfig{Path: filepath.Join(t.TempDir(), "cities.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if store.maxResults != 20 {
		t.Errorf("maxResults = %d, want 20", store.maxResults)
	}
}

// --- build tests ---

func TestBuildCountsCities(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}

func TestBuildStoresAllFields(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	results, err := store.Query(context.Background(), QueryOptions{Name: "Rome"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]
	wantKey := types.Key{Name: "Rome", Lat: 41.9, Lon: 12.5}.String()
	if r.Key != wantKey {
		t.Errorf("Key = %q, want %q", r.Key, wantKey)
	}
	if r.Name != "Rome" {
		t.Errorf("Name = %q, want Rome", r.Name)
	}
	if r.OtherName != "Roma" {
		t.Errorf("OtherName = %q, want Roma", r.OtherName)
	}
	if r.Country != "Italy" {
		t.Errorf("Country = %q, want Italy", r.Country)
	}
	if r.Certainty != 1 {
		t.Errorf("Certainty = %d, want 1", r.Certainty)
	}
	if r.Latitude != 41.9 || r.Longitude != 12.5 {
		t.Errorf("coordinates = %f, %f, want 41.9, 12.5", r.Latitude, r.Longitude)
	}
	if r.MinYear != 1800 || r.MaxYear != 1900 {
		t.Errorf("year range = %d to %d, want 1800 to 1900", r.MinYear, r.MaxYear)
	}
	if r.MaxPopulation != 1234567 {
		t.Errorf("MaxPopulation = %d, want 1234567", r.MaxPopulation)
	}
	if len(r.Populations) != 2 || r.Populations[1800] != 650000 || r.Populations[1900] != 1234567 {
		t.Errorf("Populations = %v", r.Populations)
	}
}

func TestBuildReplacesPreviousIndex(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	small := &types.FeatureCollection{
		Type: "FeatureCollection",
		Features: []types.Feature{
			feature("Uruk", "", "Iraq", 31.3, 45.6, map[int]int{-2500: 50000}),
		},
	}
	n, err := store.Build(context.Background(), small)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Build indexed %d cities, want 1", n)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1 after rebuild", count)
	}

	// The old rows must be gone from the full-text index as well.
	results, err := store.Query(context.Background(), QueryOptions{Name: "Rome"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for a replaced city, want 0", len(results))
	}
	results, err = store.Query(context.Background(), QueryOptions{Name: "Uruk"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results for Uruk, want 1", len(results))
	}
}

// --- query tests ---

func TestQueryFullText(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"matches name case-insensitively", "rome", []string{"Rome"}},
		{"matches alternate name", "Qurtuba", []string{"Cordoba"}},
		{"matches country tokens", "Iraq", []string{"Baghdad", "Ur"}},
		{"no match", "Atlantis", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Query(context.Background(), QueryOptions{Name: tt.query})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(results) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.want))
			}
			got := make(map[string]bool)
			for _, r := range results {
				got[r.Name] = true
			}
			for _, name := range tt.want {
				if !got[name] {
					t.Errorf("missing %s in results", name)
				}
			}
		})
	}
}

func TestQueryCountryFilter(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	// Lowercase input must still match via COLLATE NOCASE.
	results, err := store.Query(context.Background(), QueryOptions{Country: "iraq"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Baghdad" || results[1].Name != "Ur" {
		t.Errorf("order = %s, %s, want Baghdad, Ur", results[0].Name, results[1].Name)
	}
}

func TestQueryYearFilter(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	tests := []struct {
		name string
		year int
		want []string
	}{
		{"positive year", 900, []string{"Baghdad"}},
		{"negative year", -800, []string{"Ur"}},
		{"year nobody has", 1234, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year := tt.year
			results, err := store.Query(context.Background(), QueryOptions{Year: &year})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(results) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.want))
			}
			for i, name := range tt.want {
				if results[i].Name != name {
					t.Errorf("results[%d] = %s, want %s", i, results[i].Name, name)
				}
			}
		})
	}
}

func TestQueryMinPopulationFilter(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	results, err := store.Query(context.Background(), QueryOptions{MinPopulation: 400000})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Rome", "Baghdad", "Cordoba"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Name, name)
		}
	}
}

func TestQueryCombinedFilters(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	results, err := store.Query(context.Background(), QueryOptions{
		Name:          "Iraq",
		MinPopulation: 100000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "Baghdad" {
		t.Errorf("results = %+v, want only Baghdad", results)
	}
}

func TestQueryOrdersByPeakPopulation(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	results, err := store.Query(context.Background(), QueryOptions{MinPopulation: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Rome", "Baghdad", "Cordoba", "Ur"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Name, name)
		}
	}
}

func TestQueryMaxResults(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	results, err := store.Query(context.Background(), QueryOptions{MinPopulation: 1, MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Rome" || results[1].Name != "Baghdad" {
		t.Errorf("order = %s, %s, want Rome, Baghdad", results[0].Name, results[1].Name)
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	year := 900
	tests := []struct {
		name string
		opts QueryOptions
		want bool
	}{
		{"zero value", QueryOptions{}, true},
		{"max results only", QueryOptions{MaxResults: 5}, true},
		{"name", QueryOptions{Name: "rome"}, false},
		{"country", QueryOptions{Country: "Iraq"}, false},
		{"year", QueryOptions{Year: &year}, false},
		{"min population", QueryOptions{MinPopulation: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	dir := filepath.Join(t.TempDir(), "exports")
	if err := store.ExportYAML(context.Background(), dir, QueryOptions{Country: "Iraq"}); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var cities []City
	if err := yaml.Unmarshal(data, &cities); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("exported %d cities, want 2", len(cities))
	}
	if cities[0].Name != "Baghdad" {
		t.Errorf("first city = %s, want Baghdad", cities[0].Name)
	}
}

func TestExportJSON(t *testing.T) {
	store := testSetup(t)
	buildSample(t, store)

	dir := filepath.Join(t.TempDir(), "exports")
	if err := store.ExportJSON(context.Background(), dir, QueryOptions{}); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var cities []City
	if err := json.Unmarshal(data, &cities); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(cities) != 4 {
		t.Fatalf("exported %d cities, want 4", len(cities))
	}
	for _, c := range cities {
		if len(c.Populations) == 0 {
			t.Errorf("%s exported without populations", c.Name)
		}
	}
}
