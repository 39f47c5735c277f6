// Package transform defines the uniform stage contract the pipeline is built
// from. A stage takes the table, transforms or rejects it, and hands it
// forward; a chain is an explicit ordered list of stages.
package transform

import (
	"fmt"

	"tabpipe/internal/table"
)

// Stage is one pipeline step. Apply may mutate the table in place and return
// it, or return a replacement; on error the returned table must be ignored.
type Stage interface {
	Name() string
	Apply(t *table.Table) (*table.Table, error)
}

// Chain is an ordered list of stages applied sequentially. The first failing
// stage aborts the chain; its error is wrapped with the stage name.
type Chain []Stage

// Apply runs every stage in order.
func (c Chain) Apply(t *table.Table) (*table.Table, error) {
	cur := t
	for _, s := range c {
		var err error
		cur, err = s.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return cur, nil
}
