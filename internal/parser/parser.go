// Package parser defines the reader contract: turn raw input bytes into the
// initial table the pipeline operates on.
package parser

import (
	"io"

	"tabpipe/internal/table"
)

// Parser reads one delimited input into a table. Implementations consume r
// exactly once.
type Parser interface {
	Parse(r io.Reader) (*table.Table, error)
}
