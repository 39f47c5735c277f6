// Package builtin contains the reusable table stages the pipeline is
// assembled from: string normalization, projection, row filtering, typed
// date parsing and de-duplication.
package builtin

import (
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"tabpipe/internal/table"
)

const nbspace = " "

// Normalize scrubs every string-typed column: NBSP becomes an ASCII space,
// the value is NFC-normalized and trimmed, and anything that trims down to
// the empty string becomes a null. Non-string columns are untouched.
//
// Columns are independent, so the work is fanned out over a small worker
// pool; each goroutine owns whole columns, which keeps the result identical
// to a sequential pass.
type Normalize struct {
	// Workers caps the column-level parallelism. Zero means GOMAXPROCS.
	Workers int
}

func (Normalize) Name() string { return "normalize" }

func (n Normalize) Apply(t *table.Table) (*table.Table, error) {
	workers := n.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, col := range t.Columns() {
		if col.Type != table.String {
			continue
		}
		c := col
		g.Go(func() error {
			for i, v := range c.Values {
				s, ok := v.(string)
				if !ok {
					continue // nil cells stay null
				}
				s = normalizeString(s)
				if s == "" {
					c.Values[i] = nil
				} else {
					c.Values[i] = s
				}
			}
			return nil
		})
	}
	// The per-column workers never fail; Wait only joins them.
	_ = g.Wait()
	return t, nil
}

func normalizeString(s string) string {
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return strings.TrimSpace(s)
}
