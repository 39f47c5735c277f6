package builtin

import (
	"tabpipe/internal/table"
)

// Project applies the rename map and then the selection list. Renaming runs
// first so a selection can reference post-rename names. Rename semantics are
// a simultaneous permutation: {A→B, B→A} swaps the columns.
//
// An empty rename map and a nil selection make the stage a pass-through.
// Note the distinction: a nil Select keeps every column, while an explicit
// empty list would select nothing and is rejected upstream by config lint.
type Project struct {
	Rename map[string]string
	Select []string
}

func (Project) Name() string { return "project" }

func (p Project) Apply(t *table.Table) (*table.Table, error) {
	if err := t.Rename(p.Rename); err != nil {
		return nil, err
	}
	if p.Select != nil {
		if err := t.Select(p.Select); err != nil {
			return nil, err
		}
	}
	return t, nil
}
