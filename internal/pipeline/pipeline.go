// Package pipeline sequences the transform stages in their fixed order and
// drives the run as a forward-only state machine:
//
//	Loaded → Normalized → Projected → RowFiltered → DateParsed → Validated → Written
//
// plus a terminal Failed state reachable from any non-terminal state. No
// stage is retried or re-ordered; the first failure stops the run and the
// partial table is discarded, never written.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"tabpipe/internal/metrics"
	"tabpipe/internal/schema"
	"tabpipe/internal/table"
	"tabpipe/internal/transform"
	"tabpipe/internal/transform/builtin"
)

// State identifies the orchestrator's position in the run.
type State uint8

const (
	StateLoaded State = iota
	StateNormalized
	StateProjected
	StateRowFiltered
	StateDateParsed
	StateValidated
	StateWritten
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateNormalized:
		return "normalized"
	case StateProjected:
		return "projected"
	case StateRowFiltered:
		return "row-filtered"
	case StateDateParsed:
		return "date-parsed"
	case StateValidated:
		return "validated"
	case StateWritten:
		return "written"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateWritten || s == StateFailed }

// Writer is the output collaborator. Write is the pipeline's last action and
// is only invoked from the Validated state.
type Writer interface {
	Write(ctx context.Context, t *table.Table) error
}

// Spec carries the configured inputs of every stage. Any zero-valued part
// makes the corresponding stage a pass-through.
type Spec struct {
	Job        string
	Rename     map[string]string
	Select     []string
	DropNulls  []string
	Filters    []string
	Dates      []builtin.DateSpec
	Dedup      *builtin.Dedup
	Contract   *schema.Contract
	CollectAll bool
	Verbose    bool
}

// step pairs one stage with the state the table is in after it succeeds.
type step struct {
	stage transform.Stage
	next  State
}

// Pipeline owns the table for the duration of one run.
type Pipeline struct {
	spec   Spec
	steps  []step
	state  State
	result *table.Table
}

// New assembles the fixed stage order from spec. Stages whose inputs are
// empty still run; they are cheap no-ops, and keeping them in the sequence
// keeps the state transitions uniform.
func New(spec Spec) *Pipeline {
	steps := []step{
		{stage: builtin.Normalize{}, next: StateNormalized},
		{stage: builtin.Project{Rename: spec.Rename, Select: spec.Select}, next: StateProjected},
		{stage: builtin.DropNulls{Columns: spec.DropNulls}, next: StateRowFiltered},
		{stage: builtin.Filter{Exprs: spec.Filters}, next: StateRowFiltered},
		{stage: builtin.ParseDates{Specs: spec.Dates}, next: StateDateParsed},
	}
	if spec.Dedup != nil {
		steps = append(steps, step{stage: *spec.Dedup, next: StateDateParsed})
	}
	var validator transform.Stage = schema.Validator{CollectAll: spec.CollectAll}
	if spec.Contract != nil {
		validator = schema.Validator{Contract: *spec.Contract, CollectAll: spec.CollectAll}
	}
	steps = append(steps, step{stage: validator, next: StateValidated})
	return &Pipeline{spec: spec, steps: steps}
}

// State returns the current state. After Run it is one of the two terminal
// states.
func (p *Pipeline) State() State { return p.state }

// Result returns the table handed to the writer, or nil unless the run
// reached StateWritten. Callers must read counts from it rather than from
// the table they passed to Run, since a stage may replace the table.
func (p *Pipeline) Result() *table.Table {
	if p.state != StateWritten {
		return nil
	}
	return p.result
}

// Run executes every stage in order against tbl and writes the result with
// w. The pipeline takes ownership of tbl; on failure the table is dropped
// and the first error is returned, wrapped with the failing stage's name.
func (p *Pipeline) Run(ctx context.Context, tbl *table.Table, w Writer) error {
	if p.state != StateLoaded {
		return fmt.Errorf("pipeline already ran (state %s)", p.state)
	}
	if w == nil {
		return p.fail(fmt.Errorf("no writer configured"))
	}

	cur := tbl
	for _, st := range p.steps {
		start := time.Now()
		next, err := st.stage.Apply(cur)
		metrics.RecordStage(p.spec.Job, st.stage.Name(), err, time.Since(start))
		if err != nil {
			return p.fail(fmt.Errorf("%s: %w", st.stage.Name(), err))
		}
		cur = next
		p.state = st.next
		if p.spec.Verbose {
			log.Printf("stage=%s state=%s rows=%d cols=%d elapsed=%s",
				st.stage.Name(), p.state, cur.Len(), len(cur.Names()),
				time.Since(start).Truncate(time.Microsecond))
		}
	}

	start := time.Now()
	err := w.Write(ctx, cur)
	metrics.RecordStage(p.spec.Job, "write", err, time.Since(start))
	if err != nil {
		return p.fail(fmt.Errorf("write: %w", err))
	}
	p.state = StateWritten
	p.result = cur
	return nil
}

func (p *Pipeline) fail(err error) error {
	p.state = StateFailed
	return err
}
