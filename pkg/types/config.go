package types

// SourceConfig identifies one wide-format CSV source table.
type SourceConfig struct {
	// Name is a short label used in progress output (e.g. "chandler").
	Name string `json:"name" yaml:"name"`

	// Path is the CSV file path.
	Path string `json:"path" yaml:"path"`

	// Encoding is the legacy single-byte charset of the file
	// (e.g. "cp1252", "latin-1"). Never auto-detected.
	Encoding string `json:"encoding" yaml:"encoding"`
}

// PreprocessConfig holds settings for the CSV-to-GeoJSON conversion stage.
type PreprocessConfig struct {
	// Primary is the authoritative source for 1000 CE onward (Chandler).
	Primary SourceConfig `json:"primary" yaml:"primary"`

	// Secondary is the authoritative source for years before 1000 CE
	// (Modelski).
	Secondary SourceConfig `json:"secondary" yaml:"secondary"`

	// Output is the path of the emitted GeoJSON document.
	Output string `json:"output" yaml:"output"`
}

// SplitConfig holds settings for the FeatureCollection splitter.
type SplitConfig struct {
	// Input is the FeatureCollection to split.
	Input string `json:"input" yaml:"input"`

	// OutputDir is the directory for part files. Empty means the input's
	// directory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Prefix names part files <prefix><N>.geojson. Empty derives
	// <input stem>_part.
	Prefix string `json:"prefix" yaml:"prefix"`

	// MaxMB is the byte budget per part in mebibytes (default 90).
	MaxMB int `json:"max_mb" yaml:"max_mb"`

	// Overhead is the fixed structural overhead in bytes counted against
	// each part's budget (default 50).
	Overhead int `json:"overhead" yaml:"overhead"`
}

// IndexConfig holds settings for the city index.
type IndexConfig struct {
	// Path is the SQLite database file (default "index/cities.db").
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
