package datasource

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens files from the local disk.
type Local struct{ path string }

// NewLocal binds a Local source to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. Filesystem errors are wrapped
// with the path while staying visible to errors.Is (e.g. os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
