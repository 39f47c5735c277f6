// Package storage contains the database sinks a pipeline can write its
// final table to, plus the storage-agnostic batching loader they share.
// Each backend package turns the columnar table into batched inserts using
// its most efficient primitive (Postgres COPY, multi-row INSERT elsewhere).
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"tabpipe/internal/table"
)

// CopyFn abstracts a backend's bulk insert: write rows (aligned to the
// column order) and report how many were inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// Rows materializes the table row-wise for insertion, one []any per row in
// table column order.
func Rows(t *table.Table) [][]any {
	cols := t.Columns()
	out := make([][]any, t.Len())
	for i := range out {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = c.Values[i]
		}
		out[i] = row
	}
	return out
}

// LoadBatches slices rows into batches of batchSize and feeds them to
// copyFn, logging progress per flush. It returns the total row count
// reported by copyFn and the first error.
func LoadBatches(ctx context.Context, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := copyFn(ctx, columns, rows[off:end])
		total += n
		if err != nil {
			return total, fmt.Errorf("batch %d: %w", batches+1, err)
		}
		batches++
	}
	if batches > 0 {
		elapsed := time.Since(start)
		rps := float64(total) / maxSeconds(elapsed)
		log.Printf("loader: batches=%d inserted=%d elapsed=%s rps=%.0f",
			batches, total, elapsed.Truncate(time.Millisecond), rps)
	}
	return total, nil
}

func maxSeconds(d time.Duration) float64 {
	if s := d.Seconds(); s > 0 {
		return s
	}
	return 1e-9
}

// SQLType maps a column type onto a SQL type name for the given dialect
// ("postgres", "sqlite", "mysql"). The mapping is deliberately small; sinks
// only need enough DDL to auto-create their target table.
func SQLType(dialect string, t table.Type) string {
	switch t {
	case table.Int:
		if dialect == "sqlite" {
			return "INTEGER"
		}
		return "BIGINT"
	case table.Float:
		if dialect == "postgres" {
			return "DOUBLE PRECISION"
		}
		if dialect == "mysql" {
			return "DOUBLE"
		}
		return "REAL"
	case table.Bool:
		switch dialect {
		case "postgres":
			return "BOOLEAN"
		case "mysql":
			return "TINYINT(1)"
		default:
			return "INTEGER"
		}
	case table.Date:
		if dialect == "sqlite" {
			return "TEXT"
		}
		return "DATE"
	case table.Datetime:
		switch dialect {
		case "postgres":
			return "TIMESTAMPTZ"
		case "mysql":
			return "DATETIME"
		default:
			return "TEXT"
		}
	default:
		return "TEXT"
	}
}
