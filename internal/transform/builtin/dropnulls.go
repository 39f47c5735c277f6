package builtin

import (
	"tabpipe/internal/table"
)

// DropNulls removes every row that holds a null in any of the listed
// columns. A row survives iff all listed columns are non-null for it.
type DropNulls struct {
	Columns []string
}

func (DropNulls) Name() string { return "drop-nulls" }

func (d DropNulls) Apply(t *table.Table) (*table.Table, error) {
	if len(d.Columns) == 0 {
		return t, nil
	}
	cols := make([]*table.Column, 0, len(d.Columns))
	for _, name := range d.Columns {
		c, ok := t.Column(name)
		if !ok {
			return nil, table.ColumnNotFoundError{Column: name}
		}
		cols = append(cols, c)
	}

	keep := make([]bool, t.Len())
	for i := range keep {
		keep[i] = true
		for _, c := range cols {
			if c.Values[i] == nil {
				keep[i] = false
				break
			}
		}
	}
	if err := t.Filter(keep); err != nil {
		return nil, err
	}
	return t, nil
}
