// Package datasource provides the byte sources a pipeline can read its
// input table from: a local file or an HTTP(S) URL. The pipeline consumes
// the source exactly once at start.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// Source yields the raw input bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// New selects a source implementation by kind.
func New(kind, location string) (Source, error) {
	switch kind {
	case "file":
		return NewLocal(location), nil
	case "http":
		return NewHTTP(location, HTTPConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}
