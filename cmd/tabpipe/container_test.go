package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tabpipe/internal/config"
	"tabpipe/internal/schema"
	"tabpipe/internal/writer/arrowio"
	"tabpipe/internal/writer/csvw"
)

func TestBuildWriter(t *testing.T) {
	w, err := buildWriter(config.Output{Format: "csv", Path: "out.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(csvw.Writer); !ok {
		t.Fatalf("writer = %T, want csvw.Writer", w)
	}

	w, err = buildWriter(config.Output{Format: "arrow", Path: "out.arrow"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(arrowio.Writer); !ok {
		t.Fatalf("writer = %T, want arrowio.Writer", w)
	}

	if _, err := buildWriter(config.Output{Format: "parquet"}); err == nil {
		t.Fatal("want error for unknown format")
	}
}

func TestBuildSpec(t *testing.T) {
	p := config.Pipeline{
		Job: "orders",
		Transform: config.Transform{
			Rename:  map[string]string{"A": "a"},
			Select:  []string{"a"},
			Filters: []string{`a != ""`},
			Dates:   []config.DateSpec{{Column: "a", Format: "%Y-%m-%d"}},
			Dedup:   &config.Dedup{Keys: []string{"a"}},
		},
		ValidateAll: true,
	}
	spec, err := buildSpec(p, false)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Job != "orders" || !spec.CollectAll {
		t.Errorf("spec = %+v", spec)
	}
	if len(spec.Dates) != 1 || spec.Dates[0].Format != "%Y-%m-%d" {
		t.Errorf("Dates = %v", spec.Dates)
	}
	if spec.Dedup == nil || !reflect.DeepEqual(spec.Dedup.Keys, []string{"a"}) {
		t.Errorf("Dedup = %v", spec.Dedup)
	}
}

func TestBuildSpecBadContract(t *testing.T) {
	p := config.Pipeline{
		Job: "x",
		Contract: &schema.ContractConfig{
			Name:   "c",
			Fields: []schema.FieldConfig{{Name: "a", Type: "decimal128"}},
		},
	}
	if _, err := buildSpec(p, false); err == nil {
		t.Fatal("want error for unknown contract type")
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	data := "Order ID,Region,Day\n1,east,2024-03-01\n2,west,2024-03-02\n3,east,2024-03-15\n"
	if err := os.WriteFile(in, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p := config.Pipeline{
		Job:    "orders",
		Source: config.Source{Kind: "file", Path: in},
		Reader: config.Reader{NormalizeHeaders: true},
		Transform: config.Transform{
			Filters: []string{`region == "east"`},
			Dates:   []config.DateSpec{{Column: "day"}},
		},
		Output: config.Output{Format: "csv", Path: out},
	}

	if err := run(context.Background(), p, false); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"order_id", "region", "day"},
		{"1", "east", "2024-03-01"},
		{"3", "east", "2024-03-15"},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("output = %v, want %v", recs, want)
	}
}
