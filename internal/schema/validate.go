package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"tabpipe/internal/table"
)

// ValidationError reports the first cell that violates the contract: the
// 0-based row index in final-table order, the column, the declared type and
// the stored value.
type ValidationError struct {
	Row      int
	Column   string
	Declared table.Type
	Value    any
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d, column %q: value %v does not satisfy declared type %s",
		e.Row, e.Column, formatValue(e.Value), e.Declared)
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}

// Validator checks every row of the contract∩table columns. An empty
// intersection is a successful no-op. Nulls always pass; nullability is
// implicit. The default mode is fail-fast: the first violating cell aborts
// the stage. With CollectAll set, every violation is gathered into a single
// aggregated error instead.
type Validator struct {
	Contract   Contract
	CollectAll bool
}

func (Validator) Name() string { return "validate" }

func (v Validator) Apply(t *table.Table) (*table.Table, error) {
	type target struct {
		col      *table.Column
		declared table.Type
	}
	targets := make([]target, 0, len(v.Contract.Fields))
	for _, f := range v.Contract.Fields {
		if c, ok := t.Column(f.Name); ok {
			targets = append(targets, target{col: c, declared: f.Type})
		}
	}
	if len(targets) == 0 {
		return t, nil
	}

	var all *multierror.Error
	for i := 0; i < t.Len(); i++ {
		for _, tg := range targets {
			val := tg.col.Values[i]
			if val == nil || satisfies(val, tg.declared) {
				continue
			}
			verr := ValidationError{Row: i, Column: tg.col.Name, Declared: tg.declared, Value: val}
			if !v.CollectAll {
				return nil, verr
			}
			all = multierror.Append(all, verr)
		}
	}
	if err := all.ErrorOrNil(); err != nil {
		return nil, err
	}
	return t, nil
}

// satisfies implements the per-type acceptance rules for non-null cells.
// Values that are still strings (the pipeline may never have coerced them)
// are accepted when they parse losslessly as the declared type.
func satisfies(v any, declared table.Type) bool {
	switch declared {
	case table.String:
		_, ok := v.(string)
		return ok
	case table.Int:
		switch x := v.(type) {
		case int64, int:
			return true
		case float64:
			return x == float64(int64(x))
		case string:
			_, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			return err == nil
		default:
			return false
		}
	case table.Float:
		switch x := v.(type) {
		case float64, int64, int:
			return true
		case string:
			_, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			return err == nil
		default:
			return false
		}
	case table.Bool:
		switch x := v.(type) {
		case bool:
			return true
		case string:
			return isCanonicalBool(x)
		default:
			return false
		}
	case table.Date, table.Datetime:
		switch x := v.(type) {
		case time.Time:
			return true
		case string:
			return parsesAsTemporal(strings.TrimSpace(x), declared)
		default:
			return false
		}
	default:
		return false
	}
}

// isCanonicalBool accepts the boolean vocabulary the coercion path uses, so
// validation and coercion agree on what a boolean looks like.
func isCanonicalBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y", "0", "f", "false", "no", "n":
		return true
	default:
		return false
	}
}

// parsesAsTemporal accepts strings losslessly convertible to the declared
// temporal type: ISO dates for date, ISO dates or RFC 3339 timestamps for
// datetime.
func parsesAsTemporal(s string, declared table.Type) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	if declared == table.Datetime {
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return true
		}
		if _, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return true
		}
	}
	return false
}
