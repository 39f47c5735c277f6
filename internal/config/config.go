// Package config defines the serializable configuration model for a
// pipeline run and a static linter over it. Pipeline files decode from JSON
// or YAML, selected by file extension, into the same structs.
//
// Field names in Go mirror the document structure used in pipeline files
// under configs/*.json and configs/*.yaml.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tabpipe/internal/schema"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	Source    Source    `json:"source" yaml:"source"`
	Reader    Reader    `json:"reader" yaml:"reader"`
	Transform Transform `json:"transform" yaml:"transform"`

	// Contract, when present, declares the expected column types enforced
	// after date parsing.
	Contract *schema.ContractConfig `json:"contract,omitempty" yaml:"contract,omitempty"`

	// ValidateAll switches schema validation from fail-fast to collecting
	// every mismatch before failing.
	ValidateAll bool `json:"validate_all" yaml:"validate_all"`

	Output Output `json:"output" yaml:"output"`
}

// Source identifies where the input bytes come from.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the local filesystem path for the "file" kind.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// URL is the remote location for the "http" kind.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Location returns whichever of Path or URL applies to the source kind.
func (s Source) Location() string {
	if s.Kind == "http" {
		return s.URL
	}
	return s.Path
}

// Reader configures the delimited-text reader.
type Reader struct {
	// Delimiter is the field separator as a one-character string. Empty
	// means comma.
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// HeaderMap maps source header names to canonical column names.
	HeaderMap map[string]string `json:"header_map,omitempty" yaml:"header_map,omitempty"`

	// NormalizeHeaders lowercases headers and replaces spaces with
	// underscores for headers not covered by HeaderMap.
	NormalizeHeaders bool `json:"normalize_headers" yaml:"normalize_headers"`
}

// Comma returns the delimiter as a rune, defaulting to ','.
func (r Reader) Comma() rune {
	if r.Delimiter == "" {
		return ','
	}
	return []rune(r.Delimiter)[0]
}

// Transform holds the ordered per-stage settings. Stages always run in the
// fixed order normalize, rename, select, drop_nulls, filters, dates, dedup.
type Transform struct {
	Rename    map[string]string `json:"rename,omitempty" yaml:"rename,omitempty"`
	Select    []string          `json:"select,omitempty" yaml:"select,omitempty"`
	DropNulls []string          `json:"drop_nulls,omitempty" yaml:"drop_nulls,omitempty"`

	// Filters are boolean expressions ANDed together; rows where any
	// expression is false are dropped.
	Filters []string `json:"filters,omitempty" yaml:"filters,omitempty"`

	Dates []DateSpec `json:"dates,omitempty" yaml:"dates,omitempty"`
	Dedup *Dedup     `json:"dedup,omitempty" yaml:"dedup,omitempty"`
}

// DateSpec names a column to parse into a typed date, with an optional
// strftime or Go layout format.
type DateSpec struct {
	Column string `json:"column" yaml:"column"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Dedup configures duplicate-row removal over the named key columns.
type Dedup struct {
	Keys []string `json:"keys" yaml:"keys"`

	// Policy is "keep-first" or "keep-last" (the default).
	Policy string `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Output selects the sink for the finished table.
type Output struct {
	// Format selects the writer: "csv", "arrow", "postgres", "sqlite" or
	// "mysql".
	Format string `json:"format" yaml:"format"`

	// Path is the output file path for the "csv" and "arrow" formats.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Delimiter overrides the comma for the "csv" format.
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// DB carries settings for the database formats.
	DB DBConfig `json:"db,omitempty" yaml:"db,omitempty"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the target table name, possibly schema-qualified.
	Table string `json:"table" yaml:"table"`

	// AutoCreate issues CREATE TABLE IF NOT EXISTS derived from the final
	// column types before loading.
	AutoCreate bool `json:"auto_create" yaml:"auto_create"`

	// BatchSize is rows per bulk insert; zero means the backend default.
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
}

// Load reads and decodes a pipeline file. The extension picks the decoder:
// .yaml and .yml decode as YAML, everything else as JSON.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	return Decode(b, filepath.Ext(path))
}

// Decode parses raw config bytes using the decoder implied by ext.
func Decode(b []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode json config: %w", err)
		}
	}
	return p, nil
}
