// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strconv"

// Key identifies a city by name and parsed coordinates. Rows referring to
// the same physical city collapse into one record under this key. Using
// the parsed floats rather than their text rendering keeps deduplication
// independent of number formatting in the source tables.
type Key struct {
	Name string
	Lat  float64
	Lon  float64
}

// String renders the key as name_lat_lon with shortest round-trip float
// formatting. Used for display and as the index primary key.
func (k Key) String() string {
	return k.Name + "_" + formatCoord(k.Lat) + "_" + formatCoord(k.Lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// CityRecord holds one city's descriptive fields and its year-keyed
// population series.
type CityRecord struct {
	// Name is the display name from the source table's City column.
	Name string `json:"name" yaml:"name"`

	// OtherName is an alternate or historical name, often empty.
	OtherName string `json:"otherName" yaml:"other_name"`

	// Country is the country label as given by the source, not normalized.
	Country string `json:"country" yaml:"country"`

	// Certainty is the source's confidence flag for the location (default 1).
	Certainty int `json:"certainty" yaml:"certainty"`

	// Lat and Lon are the parsed coordinates in degrees.
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`

	// Populations maps year to population. Negative years are BCE. An entry
	// exists only if the source cell held a strictly positive integer.
	Populations map[int]int `json:"populations" yaml:"populations"`
}

// Key returns the record's composite key.
func (r *CityRecord) Key() Key {
	return Key{Name: r.Name, Lat: r.Lat, Lon: r.Lon}
}

// Clone returns a deep copy of the record, including its population map,
// so merged collections never alias source data.
func (r *CityRecord) Clone() *CityRecord {
	c := *r
	c.Populations = make(map[int]int, len(r.Populations))
	for year, pop := range r.Populations {
		c.Populations[year] = pop
	}
	return &c
}

// Collection is a keyed set of CityRecords that preserves insertion
// order. Emission order is defined as insertion order, which a plain map
// cannot provide.
type Collection struct {
	order   []Key
	records map[Key]*CityRecord
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{records: make(map[Key]*CityRecord)}
}

// Add inserts rec under its key. Adding a key that is already present
// replaces the record without changing its position.
func (c *Collection) Add(rec *CityRecord) {
	k := rec.Key()
	if _, ok := c.records[k]; !ok {
		c.order = append(c.order, k)
	}
	c.records[k] = rec
}

// Get returns the record for k, if present.
func (c *Collection) Get(k Key) (*CityRecord, bool) {
	rec, ok := c.records[k]
	return rec, ok
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.records)
}

// Records returns the records in insertion order.
func (c *Collection) Records() []*CityRecord {
	out := make([]*CityRecord, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.records[k])
	}
	return out
}

// Keys returns the keys in insertion order.
func (c *Collection) Keys() []Key {
	out := make([]Key, len(c.order))
	copy(out, c.order)
	return out
}
