// Package mysql implements a MySQL sink using database/sql with the
// go-sql-driver driver. Batches load through multi-row INSERT statements,
// which MySQL executes far faster than row-at-a-time inserts.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"tabpipe/internal/storage"
	"tabpipe/internal/table"
)

// Sink writes a finished table into MySQL.
type Sink struct {
	DSN        string // e.g. "user:pass@tcp(host:3306)/db?parseTime=true"
	Table      string
	AutoCreate bool
	BatchSize  int // rows per multi-row INSERT, defaults to 500
}

func (s *Sink) Write(ctx context.Context, t *table.Table) error {
	db, err := sql.Open("mysql", s.DSN)
	if err != nil {
		return fmt.Errorf("mysql: open: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("mysql: ping: %w", err)
	}

	if s.AutoCreate {
		if _, err := db.ExecContext(ctx, CreateDDL(s.Table, t.Columns())); err != nil {
			return fmt.Errorf("mysql: create table: %w", err)
		}
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = 500
	}
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		stmt, args := MultiInsert(s.Table, columns, rows)
		res, err := db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, fmt.Errorf("mysql: insert: %w", err)
		}
		return insertedRows(res)
	}
	_, err = storage.LoadBatches(ctx, t.Names(), storage.Rows(t), batch, copyFn)
	return err
}

// insertedRows reads the affected-row count so loader totals stay honest.
func insertedRows(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mysql: rows affected: %w", err)
	}
	return n, nil
}

// MultiInsert builds one INSERT with a VALUES tuple per row and the flattened
// argument list to go with it.
func MultiInsert(name string, columns []string, rows [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		tuples[i] = tuple
		args = append(args, row...)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(tuples, ", "))
	return stmt, args
}

// CreateDDL renders CREATE TABLE IF NOT EXISTS with MySQL types. TEXT
// columns need a keyless type, so strings map to TEXT rather than VARCHAR.
func CreateDDL(name string, cols []*table.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + storage.SQLType("mysql", c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
