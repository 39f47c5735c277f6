// Package postgres implements a Postgres sink using pgx v5. Rows stream into
// the target table through COPY, batched to keep round-trips low.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tabpipe/internal/storage"
	"tabpipe/internal/table"
)

// Sink writes a finished table into Postgres.
type Sink struct {
	DSN        string // connection string for pgxpool
	Table      string // possibly schema-qualified target, e.g. "public.orders"
	AutoCreate bool   // issue CREATE TABLE IF NOT EXISTS before loading
	BatchSize  int    // rows per COPY, defaults to 5000
}

// Write connects, optionally creates the target table from the table's
// column types, and COPYs all rows in batches.
func (s *Sink) Write(ctx context.Context, t *table.Table) error {
	pool, err := pgxpool.New(ctx, s.DSN)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if s.AutoCreate {
		if _, err := conn.Exec(ctx, CreateDDL(s.Table, t.Columns())); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = 5000
	}
	ident := pgx.Identifier(strings.Split(s.Table, "."))
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		n, err := conn.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Detail != "" {
				return n, fmt.Errorf("copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
			}
			return n, fmt.Errorf("copy: %w", err)
		}
		return n, nil
	}
	_, err = storage.LoadBatches(ctx, t.Names(), storage.Rows(t), batch, copyFn)
	return err
}

// CreateDDL renders a CREATE TABLE IF NOT EXISTS statement for the given
// columns using Postgres types.
func CreateDDL(name string, cols []*table.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgIdent(c.Name) + " " + storage.SQLType("postgres", c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgFQN(name), strings.Join(defs, ", "))
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.orders" to
// "public"."orders". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
