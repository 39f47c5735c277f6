package transform

import (
	"errors"
	"testing"

	"tabpipe/internal/table"
)

type fakeStage struct {
	name string
	err  error
	log  *[]string
}

func (s fakeStage) Name() string { return s.name }

func (s fakeStage) Apply(t *table.Table) (*table.Table, error) {
	*s.log = append(*s.log, s.name)
	if s.err != nil {
		return nil, s.err
	}
	return t, nil
}

func TestChainOrder(t *testing.T) {
	tbl, err := table.New(table.Column{Name: "a", Type: table.String, Values: []any{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	var log []string
	c := Chain{
		fakeStage{name: "one", log: &log},
		fakeStage{name: "two", log: &log},
	}
	out, err := c.Apply(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if out != tbl {
		t.Error("chain must hand the same table forward")
	}
	if len(log) != 2 || log[0] != "one" || log[1] != "two" {
		t.Errorf("order = %v", log)
	}
}

func TestChainAbortsOnFailure(t *testing.T) {
	tbl, err := table.New(table.Column{Name: "a", Type: table.String, Values: []any{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	var log []string
	c := Chain{
		fakeStage{name: "one", log: &log},
		fakeStage{name: "two", err: boom, log: &log},
		fakeStage{name: "three", log: &log},
	}
	_, err = c.Apply(tbl)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if want := "two: boom"; err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
	if len(log) != 2 {
		t.Errorf("stage three ran after failure: %v", log)
	}
}
