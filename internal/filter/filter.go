// Package filter wraps the expression-evaluation collaborator behind a small
// capability interface: compile an opaque predicate string once, evaluate it
// per row against the current column values, and require a boolean result.
//
// The expression syntax itself is owned by govaluate; this package only pins
// down the error contract the pipeline depends on.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
)

// InvalidFilterError occurs when a predicate cannot be compiled, references
// an unknown column, or yields a non-boolean result. It always carries the
// offending expression verbatim.
type InvalidFilterError struct {
	Expr   string
	Reason string
}

func (e InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.Expr, e.Reason)
}

// Predicate is a compiled row predicate.
type Predicate struct {
	expr string
	prog *govaluate.EvaluableExpression
}

// Compile parses the predicate string. Malformed expressions are reported as
// InvalidFilterError.
func Compile(expr string) (*Predicate, error) {
	prog, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, InvalidFilterError{Expr: expr, Reason: err.Error()}
	}
	return &Predicate{expr: expr, prog: prog}, nil
}

// Expr returns the original predicate string.
func (p *Predicate) Expr() string { return p.expr }

// Eval evaluates the predicate against one row. Numeric cells are widened to
// float64 for the evaluator; nulls stay nil. A reference to a column absent
// from the row or a non-boolean result is an InvalidFilterError.
func (p *Predicate) Eval(row map[string]any) (bool, error) {
	params := make(map[string]any, len(row))
	for k, v := range row {
		params[k] = widen(v)
	}
	res, err := p.prog.Evaluate(params)
	if err != nil {
		reason := err.Error()
		if strings.Contains(reason, "No parameter") {
			reason = "references an unknown column: " + reason
		}
		return false, InvalidFilterError{Expr: p.expr, Reason: reason}
	}
	b, ok := res.(bool)
	if !ok {
		return false, InvalidFilterError{
			Expr:   p.expr,
			Reason: fmt.Sprintf("result is %T, want bool", res),
		}
	}
	return b, nil
}

// widen converts typed cells into the value domain govaluate computes over.
func widen(v any) any {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case float64, string, bool, nil:
		return x
	case time.Time:
		return float64(x.Unix())
	default:
		return x
	}
}
