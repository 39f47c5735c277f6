package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabpipe/internal/schema"
	"tabpipe/internal/table"
	"tabpipe/internal/transform/builtin"
)

// captureWriter records the table it was handed, or fails on demand.
type captureWriter struct {
	got *table.Table
	err error
}

func (w *captureWriter) Write(ctx context.Context, t *table.Table) error {
	if w.err != nil {
		return w.err
	}
	w.got = t
	return nil
}

func inputTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "Order ID", Type: table.String, Values: []any{"1", " 2 ", "3", "1"}},
		table.Column{Name: "Region", Type: table.String, Values: []any{"east", "west", "east", "east"}},
		table.Column{Name: "Day", Type: table.String, Values: []any{"2024-03-01", "2024-03-02", "2024-03-15", "2024-03-01"}},
	)
	require.NoError(t, err)
	return tbl
}

func TestRunEndToEnd(t *testing.T) {
	spec := Spec{
		Job:       "orders",
		Rename:    map[string]string{"Order ID": "order_id", "Region": "region", "Day": "day"},
		Select:    []string{"order_id", "region", "day"},
		DropNulls: []string{"order_id"},
		Filters:   []string{`region == "east"`},
		Dates:     []builtin.DateSpec{{Column: "day"}},
		Dedup:     &builtin.Dedup{Keys: []string{"order_id"}, Policy: "keep-first"},
		Contract: &schema.Contract{Name: "orders", Fields: []schema.Field{
			{Name: "order_id", Type: table.Int},
			{Name: "day", Type: table.Date},
		}},
	}

	p := New(spec)
	require.Equal(t, StateLoaded, p.State())

	w := &captureWriter{}
	require.NoError(t, p.Run(context.Background(), inputTable(t), w))
	require.Equal(t, StateWritten, p.State())
	require.True(t, p.State().Terminal())

	out := w.got
	require.NotNil(t, out)
	assert.Equal(t, []string{"order_id", "region", "day"}, out.Names())
	// "west" filtered out, duplicate order_id 1 deduped.
	require.Equal(t, 2, out.Len())
	ids, ok := out.Column("order_id")
	require.True(t, ok)
	assert.Equal(t, []any{"1", "3"}, ids.Values)

	day, ok := out.Column("day")
	require.True(t, ok)
	require.Equal(t, table.Date, day.Type)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), day.Values[0])
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), day.Values[1])

	// Result is the written table, not the input handed to Run.
	require.Same(t, w.got, p.Result())
}

func TestRunStageFailureSkipsWrite(t *testing.T) {
	spec := Spec{
		Job:     "orders",
		Filters: []string{"no_such_column > 0"},
	}
	p := New(spec)
	w := &captureWriter{}

	err := p.Run(context.Background(), inputTable(t), w)
	require.Error(t, err)
	assert.ErrorContains(t, err, "filter")
	assert.Equal(t, StateFailed, p.State())
	assert.True(t, p.State().Terminal())
	assert.Nil(t, w.got, "failed run must never write")
	assert.Nil(t, p.Result())
}

func TestRunValidationFailFast(t *testing.T) {
	spec := Spec{
		Job: "orders",
		Rename: map[string]string{
			"Order ID": "order_id", "Region": "region", "Day": "day",
		},
		Contract: &schema.Contract{Name: "orders", Fields: []schema.Field{
			{Name: "region", Type: table.Float},
		}},
	}
	p := New(spec)
	w := &captureWriter{}

	err := p.Run(context.Background(), inputTable(t), w)
	require.Error(t, err)
	assert.ErrorContains(t, err, "validate")
	var verr schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "region", verr.Column)
	assert.Equal(t, StateFailed, p.State())
	assert.Nil(t, w.got)
}

func TestRunWriteFailure(t *testing.T) {
	p := New(Spec{Job: "orders"})
	boom := errors.New("disk full")
	err := p.Run(context.Background(), inputTable(t), &captureWriter{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, p.State())
}

func TestRunOnlyOnce(t *testing.T) {
	p := New(Spec{Job: "orders"})
	require.NoError(t, p.Run(context.Background(), inputTable(t), &captureWriter{}))
	err := p.Run(context.Background(), inputTable(t), &captureWriter{})
	require.Error(t, err)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "written", StateWritten.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.False(t, StateDateParsed.Terminal())
}
