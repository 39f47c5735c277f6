package main

import (
	"context"
	"fmt"
	"os"

	"tabpipe/internal/config"
	"tabpipe/internal/datasource"
	"tabpipe/internal/metrics"
	"tabpipe/internal/parser/csv"
	"tabpipe/internal/pipeline"
	"tabpipe/internal/storage/mysql"
	"tabpipe/internal/storage/postgres"
	"tabpipe/internal/storage/sqlite"
	"tabpipe/internal/transform/builtin"
	"tabpipe/internal/writer/arrowio"
	"tabpipe/internal/writer/csvw"
)

// run wires config into concrete components and executes one pipeline run:
// open the source, parse it into a table, transform through the staged
// pipeline, and write with the configured sink.
func run(ctx context.Context, p config.Pipeline, verbose bool) error {
	src, err := datasource.New(p.Source.Kind, p.Source.Location())
	if err != nil {
		return err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	parser := csv.NewParser(csv.Options{
		Comma:            p.Reader.Comma(),
		HeaderMap:        p.Reader.HeaderMap,
		NormalizeHeaders: p.Reader.NormalizeHeaders,
	})
	tbl, err := parser.Parse(rc)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	metrics.RecordRows(p.Job, "input", tbl.Len())

	spec, err := buildSpec(p, verbose)
	if err != nil {
		return err
	}
	w, err := buildWriter(p.Output)
	if err != nil {
		return err
	}

	pipe := pipeline.New(spec)
	if err := pipe.Run(ctx, tbl, w); err != nil {
		return fmt.Errorf("job %s: %w", p.Job, err)
	}
	metrics.RecordRows(p.Job, "written", pipe.Result().Len())
	return nil
}

// buildSpec translates the serialized transform settings into stage inputs.
func buildSpec(p config.Pipeline, verbose bool) (pipeline.Spec, error) {
	spec := pipeline.Spec{
		Job:        p.Job,
		Rename:     p.Transform.Rename,
		Select:     p.Transform.Select,
		DropNulls:  p.Transform.DropNulls,
		Filters:    p.Transform.Filters,
		CollectAll: p.ValidateAll,
		Verbose:    verbose,
	}
	for _, d := range p.Transform.Dates {
		spec.Dates = append(spec.Dates, builtin.DateSpec{Column: d.Column, Format: d.Format})
	}
	if d := p.Transform.Dedup; d != nil {
		spec.Dedup = &builtin.Dedup{Keys: d.Keys, Policy: d.Policy}
	}
	if p.Contract != nil {
		c, err := p.Contract.Build()
		if err != nil {
			return pipeline.Spec{}, err
		}
		spec.Contract = &c
	}
	return spec, nil
}

// buildWriter selects the sink for the configured output format.
func buildWriter(o config.Output) (pipeline.Writer, error) {
	switch o.Format {
	case "csv":
		w := csvw.Writer{Path: o.Path}
		if o.Path == "-" {
			w = csvw.Writer{W: os.Stdout}
		}
		if o.Delimiter != "" {
			w.Comma = []rune(o.Delimiter)[0]
		}
		return w, nil
	case "arrow":
		return arrowio.Writer{Path: o.Path}, nil
	case "postgres":
		return &postgres.Sink{
			DSN:        o.DB.DSN,
			Table:      o.DB.Table,
			AutoCreate: o.DB.AutoCreate,
			BatchSize:  o.DB.BatchSize,
		}, nil
	case "sqlite":
		return &sqlite.Sink{
			DSN:        o.DB.DSN,
			Table:      o.DB.Table,
			AutoCreate: o.DB.AutoCreate,
			BatchSize:  o.DB.BatchSize,
		}, nil
	case "mysql":
		return &mysql.Sink{
			DSN:        o.DB.DSN,
			Table:      o.DB.Table,
			AutoCreate: o.DB.AutoCreate,
			BatchSize:  o.DB.BatchSize,
		}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", o.Format)
	}
}
