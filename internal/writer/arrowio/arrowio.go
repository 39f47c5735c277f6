// Package arrowio serializes a table into an Arrow IPC file, the columnar
// binary counterpart of the delimited text writer, and reads one back.
// Column types map onto Arrow types losslessly; nulls become Arrow nulls.
package arrowio

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tabpipe/internal/table"
)

// Writer writes one table to an Arrow IPC file at Path.
type Writer struct {
	Path string
}

// Write builds one record batch covering the whole table and writes it.
func (w Writer) Write(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", w.Path, err)
	}
	defer f.Close()

	schema, err := arrowSchema(t)
	if err != nil {
		return err
	}
	alloc := memory.DefaultAllocator
	bld := array.NewRecordBuilder(alloc, schema)
	defer bld.Release()

	for j, c := range t.Columns() {
		if err := appendColumn(bld.Field(j), c); err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
	}
	rec := bld.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	if err != nil {
		return fmt.Errorf("open ipc writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("write record: %w", err)
	}
	return fw.Close()
}

func arrowSchema(t *table.Table) (*arrow.Schema, error) {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		dt, err := arrowType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

func arrowType(t table.Type) (arrow.DataType, error) {
	switch t {
	case table.String:
		return arrow.BinaryTypes.String, nil
	case table.Int:
		return arrow.PrimitiveTypes.Int64, nil
	case table.Float:
		return arrow.PrimitiveTypes.Float64, nil
	case table.Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case table.Date:
		return arrow.FixedWidthTypes.Date32, nil
	case table.Datetime:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

func appendColumn(b array.Builder, c *table.Column) error {
	for i, v := range c.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch bld := b.(type) {
		case *array.StringBuilder:
			s, ok := v.(string)
			if !ok {
				return cellTypeError(i, v, "string")
			}
			bld.Append(s)
		case *array.Int64Builder:
			n, ok := v.(int64)
			if !ok {
				return cellTypeError(i, v, "int64")
			}
			bld.Append(n)
		case *array.Float64Builder:
			f, ok := v.(float64)
			if !ok {
				return cellTypeError(i, v, "float64")
			}
			bld.Append(f)
		case *array.BooleanBuilder:
			x, ok := v.(bool)
			if !ok {
				return cellTypeError(i, v, "bool")
			}
			bld.Append(x)
		case *array.Date32Builder:
			ts, ok := v.(time.Time)
			if !ok {
				return cellTypeError(i, v, "time.Time")
			}
			bld.Append(arrow.Date32FromTime(ts))
		case *array.TimestampBuilder:
			ts, ok := v.(time.Time)
			if !ok {
				return cellTypeError(i, v, "time.Time")
			}
			bld.Append(arrow.Timestamp(ts.UnixMicro()))
		default:
			return fmt.Errorf("unhandled builder %T", b)
		}
	}
	return nil
}

func cellTypeError(row int, v any, want string) error {
	return fmt.Errorf("row %d: cell is %T, want %s", row, v, want)
}

// Read loads an Arrow IPC file written by Writer back into a table. It is
// the read half of the round-trip contract used by tests and downstream
// consumers.
func Read(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fr, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("open ipc reader: %w", err)
	}
	defer fr.Close()

	schema := fr.Schema()
	cols := make([]table.Column, len(schema.Fields()))
	for j, fld := range schema.Fields() {
		typ, err := tableType(fld.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", fld.Name, err)
		}
		cols[j] = table.Column{Name: fld.Name, Type: typ, Values: []any{}}
	}

	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for j := range cols {
			appendArrowValues(&cols[j], rec.Column(j))
		}
	}
	return table.New(cols...)
}

func tableType(dt arrow.DataType) (table.Type, error) {
	switch dt.ID() {
	case arrow.STRING:
		return table.String, nil
	case arrow.INT64:
		return table.Int, nil
	case arrow.FLOAT64:
		return table.Float, nil
	case arrow.BOOL:
		return table.Bool, nil
	case arrow.DATE32:
		return table.Date, nil
	case arrow.TIMESTAMP:
		return table.Datetime, nil
	default:
		return table.String, fmt.Errorf("unsupported arrow type %s", dt)
	}
}

func appendArrowValues(c *table.Column, a arrow.Array) {
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			c.Values = append(c.Values, nil)
			continue
		}
		switch arr := a.(type) {
		case *array.String:
			c.Values = append(c.Values, arr.Value(i))
		case *array.Int64:
			c.Values = append(c.Values, arr.Value(i))
		case *array.Float64:
			c.Values = append(c.Values, arr.Value(i))
		case *array.Boolean:
			c.Values = append(c.Values, arr.Value(i))
		case *array.Date32:
			c.Values = append(c.Values, arr.Value(i).ToTime())
		case *array.Timestamp:
			c.Values = append(c.Values, time.UnixMicro(int64(arr.Value(i))).UTC())
		}
	}
}
