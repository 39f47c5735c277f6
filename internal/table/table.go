// Package table implements the in-memory columnar table that flows through
// the transform pipeline. A Table is a set of named, equal-length, typed
// columns; a nil cell is the null marker, distinct from the empty string.
//
// Tables are owned by exactly one caller at a time. Stages mutate them in
// place and hand them forward; nothing retains a reference after returning.
package table

import (
	"fmt"
)

// Column is a single named column. Values holds one cell per row; a nil cell
// marks a null. The concrete Go type of non-nil cells is determined by Type:
// string, int64, float64, bool, or time.Time for Date/Datetime.
type Column struct {
	Name   string
	Type   Type
	Values []any
}

// Table is an ordered collection of equal-length columns with unique names.
type Table struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// New builds a Table from columns, enforcing the structural invariants:
// names must be unique and non-empty, and every column must have the same
// number of values.
func New(cols ...Column) (*Table, error) {
	t := &Table{cols: make(map[string]*Column, len(cols))}
	for i := range cols {
		c := cols[i]
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := t.cols[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = len(c.Values)
		} else if len(c.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), t.rows)
		}
		t.names = append(t.names, c.Name)
		t.cols[c.Name] = &c
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Names returns the column names in table order. The slice is a copy.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns the named column, or nil and false if it does not exist.
// The returned pointer aliases table storage; callers may mutate cells but
// must not resize Values.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Rename applies the mapping as a simultaneous permutation: all keys are
// detached first, then re-attached under their new names, so {A→B, B→A}
// swaps the two columns rather than clobbering one. Keys must reference
// existing columns; a new name must not collide with a column that is not
// itself being renamed away.
func (t *Table) Rename(mapping map[string]string) error {
	if len(mapping) == 0 {
		return nil
	}
	for old := range mapping {
		if !t.Has(old) {
			return ColumnNotFoundError{Column: old}
		}
	}
	for _, renamed := range mapping {
		if _, alsoRenamed := mapping[renamed]; alsoRenamed {
			continue // target column is vacating its name in the same step
		}
		if t.Has(renamed) {
			return ColumnCollisionError{Column: renamed}
		}
	}
	seen := make(map[string]struct{}, len(mapping))
	for _, renamed := range mapping {
		if _, dup := seen[renamed]; dup {
			return ColumnCollisionError{Column: renamed}
		}
		seen[renamed] = struct{}{}
	}

	// Detach every renamed column first so a swap never clobbers a column
	// that has not vacated its name yet.
	detached := make(map[string]*Column, len(mapping))
	for old := range mapping {
		detached[old] = t.cols[old]
		delete(t.cols, old)
	}
	for i, name := range t.names {
		if renamed, ok := mapping[name]; ok {
			c := detached[name]
			c.Name = renamed
			t.names[i] = renamed
			t.cols[renamed] = c
		}
	}
	return nil
}

// Select retains only the named columns, in the given order. Every name must
// exist at the time of the call.
func (t *Table) Select(names []string) error {
	kept := make(map[string]*Column, len(names))
	for _, name := range names {
		c, ok := t.cols[name]
		if !ok {
			return ColumnNotFoundError{Column: name}
		}
		if _, dup := kept[name]; dup {
			return fmt.Errorf("column %q selected twice", name)
		}
		kept[name] = c
	}
	t.cols = kept
	t.names = append(t.names[:0], names...)
	return nil
}

// Filter keeps only the rows for which keep[i] is true. len(keep) must equal
// the row count.
func (t *Table) Filter(keep []bool) error {
	if len(keep) != t.rows {
		return fmt.Errorf("keep mask has %d entries, table has %d rows", len(keep), t.rows)
	}
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	if n == t.rows {
		return nil
	}
	for _, c := range t.cols {
		dst := c.Values[:0]
		for i, k := range keep {
			if k {
				dst = append(dst, c.Values[i])
			}
		}
		c.Values = dst
	}
	t.rows = n
	return nil
}

// Row materializes row i as a name→value map. Used by the expression filter,
// which needs a per-row environment; the map is freshly allocated.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.names))
	for _, name := range t.names {
		row[name] = t.cols[name].Values[i]
	}
	return row
}

// Columns returns the columns in table order. The slice is fresh but the
// pointers alias table storage.
func (t *Table) Columns() []*Column {
	out := make([]*Column, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.cols[name])
	}
	return out
}
