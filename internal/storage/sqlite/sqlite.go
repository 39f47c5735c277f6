// Package sqlite implements a SQLite sink using database/sql. SQLite has no
// bulk-load API like Postgres COPY, but a prepared INSERT inside a single
// transaction keeps performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // cgo-free SQLite driver

	"tabpipe/internal/storage"
	"tabpipe/internal/table"
)

// Sink writes a finished table into a SQLite database file.
type Sink struct {
	DSN        string // e.g. "file:out.db?cache=shared" or a plain path
	Table      string
	AutoCreate bool
	BatchSize  int // rows per transaction, defaults to 1000
}

func (s *Sink) Write(ctx context.Context, t *table.Table) error {
	if strings.TrimSpace(s.DSN) == "" {
		return fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return fmt.Errorf("sqlite: open: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}

	if s.AutoCreate {
		if _, err := db.ExecContext(ctx, CreateDDL(s.Table, t.Columns())); err != nil {
			return fmt.Errorf("sqlite: create table: %w", err)
		}
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	insert := InsertSQL(s.Table, t.Names())
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return insertTx(ctx, db, insert, rows)
	}
	_, err = storage.LoadBatches(ctx, t.Names(), storage.Rows(t), batch, copyFn)
	return err
}

// insertTx runs one prepared INSERT per row inside a single transaction.
func insertTx(ctx context.Context, db *sql.DB, insert string, rows [][]any) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, flatten(row)...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// flatten renders driver-unfriendly cell values. SQLite stores dates as TEXT,
// so time.Time becomes RFC 3339.
func flatten(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if ts, ok := v.(time.Time); ok {
			out[i] = ts.Format(time.RFC3339)
			continue
		}
		out[i] = v
	}
	return out
}

// InsertSQL builds "INSERT INTO t (a, b) VALUES (?, ?)".
func InsertSQL(name string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// CreateDDL renders CREATE TABLE IF NOT EXISTS with SQLite types.
func CreateDDL(name string, cols []*table.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + storage.SQLType("sqlite", c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
