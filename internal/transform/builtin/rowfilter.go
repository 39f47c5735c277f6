package builtin

import (
	"tabpipe/internal/filter"
	"tabpipe/internal/table"
)

// Filter applies the configured predicate expressions in order. Each
// expression narrows the active row set: a row survives only if it satisfies
// every expression. The stage never inspects the declared schema; predicates
// see the current column values only.
type Filter struct {
	Exprs []string
}

func (Filter) Name() string { return "filter" }

func (f Filter) Apply(t *table.Table) (*table.Table, error) {
	for _, expr := range f.Exprs {
		pred, err := filter.Compile(expr)
		if err != nil {
			return nil, err
		}
		keep := make([]bool, t.Len())
		for i := range keep {
			ok, err := pred.Eval(t.Row(i))
			if err != nil {
				return nil, err
			}
			keep[i] = ok
		}
		if err := t.Filter(keep); err != nil {
			return nil, err
		}
	}
	return t, nil
}
