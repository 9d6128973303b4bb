// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FeatureCollection is the emitted GeoJSON document: one point feature
// per city with at least one population entry.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single city as a GeoJSON point feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   PointGeometry  `json:"geometry"`
	Properties CityProperties `json:"properties"`
}

// PointGeometry holds a GeoJSON Point. Coordinates are [longitude,
// latitude], longitude first per the GeoJSON convention.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// CityProperties carries the per-city attributes the map application
// reads. MinYear, MaxYear, and MaxPopulation are derived from the
// population series at emission time and cached here so consumers never
// recompute them. All fields are always present; empty strings stay
// empty strings.
type CityProperties struct {
	Name          string      `json:"name"`
	OtherName     string      `json:"otherName"`
	Country       string      `json:"country"`
	Certainty     int         `json:"certainty"`
	MinYear       int         `json:"minYear"`
	MaxYear       int         `json:"maxYear"`
	MaxPopulation int         `json:"maxPopulation"`
	Populations   map[int]int `json:"populations"`
}
