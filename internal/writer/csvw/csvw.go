// Package csvw serializes a table back to delimited text, with the same
// header and row-order semantics as the input format. Nulls render as empty
// fields; temporal columns render as ISO dates / RFC 3339 timestamps.
package csvw

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"tabpipe/internal/table"
)

// Writer writes one table to an io.Writer or a file path.
type Writer struct {
	// Path is the output file; empty means W must be set.
	Path string
	// W is the destination stream when Path is empty.
	W io.Writer
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Write serializes the table. It is the terminal pipeline action.
func (w Writer) Write(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := w.W
	if w.Path != "" {
		f, err := os.Create(w.Path)
		if err != nil {
			return fmt.Errorf("create %s: %w", w.Path, err)
		}
		defer f.Close()
		dst = f
	}
	if dst == nil {
		return fmt.Errorf("no output destination configured")
	}

	cw := csv.NewWriter(dst)
	if w.Comma != 0 {
		cw.Comma = w.Comma
	}

	names := t.Names()
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			record[j] = formatCell(c.Values[i], c.Type)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func formatCell(v any, typ table.Type) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if typ == table.Datetime {
			return x.Format(time.RFC3339)
		}
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}
