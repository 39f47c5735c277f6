package builtin

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"tabpipe/internal/table"
)

func TestParseDates_Success(t *testing.T) {
	tbl := mustTable(t, table.Column{
		Name: "d", Type: table.String,
		Values: []any{"2024-01-01", nil, "2024-02-29"},
	})
	out, err := ParseDates{Specs: []DateSpec{{Column: "d", Format: "2006-01-02"}}}.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	c, _ := out.Column("d")
	if c.Type != table.Date {
		t.Fatalf("type = %v, want Date", c.Type)
	}
	want := []any{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		nil,
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}
	if !reflect.DeepEqual(c.Values, want) {
		t.Fatalf("values = %v, want %v", c.Values, want)
	}
}

func TestParseDates_StrftimeFormat(t *testing.T) {
	tbl := mustTable(t, table.Column{
		Name: "d", Type: table.String, Values: []any{"2024-01-01"},
	})
	out, err := ParseDates{Specs: []DateSpec{{Column: "d", Format: "%Y-%m-%d"}}}.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	c, _ := out.Column("d")
	if c.Values[0] != time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("value = %v", c.Values[0])
	}
}

func TestParseDates_DatetimeLayout(t *testing.T) {
	tbl := mustTable(t, table.Column{
		Name: "ts", Type: table.String, Values: []any{"2024-01-01 13:30:00"},
	})
	out, err := ParseDates{Specs: []DateSpec{{Column: "ts", Format: "2006-01-02 15:04:05"}}}.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	c, _ := out.Column("ts")
	if c.Type != table.Datetime {
		t.Fatalf("type = %v, want Datetime", c.Type)
	}
}

/*
TestParseDates_StrictFailureListsAllRows verifies the failure model: a single
unparseable non-null value aborts the stage, and the error enumerates every
offending row position and raw value for the column, not just the first.
*/
func TestParseDates_StrictFailureListsAllRows(t *testing.T) {
	tests := []struct {
		name       string
		values     []any
		wantRows   []int
		wantValues []string
	}{
		{
			name:       "wrong_format",
			values:     []any{"2024-01-01", "01/02/2024"},
			wantRows:   []int{1},
			wantValues: []string{"01/02/2024"},
		},
		{
			name:       "invalid_calendar_date",
			values:     []any{"2024-01-01", "2024-02-30"},
			wantRows:   []int{1},
			wantValues: []string{"2024-02-30"},
		},
		{
			name:       "multiple_failures_all_reported",
			values:     []any{"oops", "2024-01-01", nil, "nope"},
			wantRows:   []int{0, 3},
			wantValues: []string{"oops", "nope"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, table.Column{Name: "d", Type: table.String, Values: tt.values})
			_, err := ParseDates{Specs: []DateSpec{{Column: "d", Format: "%Y-%m-%d"}}}.Apply(tbl)
			var perr DateParseError
			if !errors.As(err, &perr) {
				t.Fatalf("want DateParseError, got %v", err)
			}
			if perr.Column != "d" || perr.Format != "%Y-%m-%d" {
				t.Fatalf("error identifies %q/%q", perr.Column, perr.Format)
			}
			if !reflect.DeepEqual(perr.Rows, tt.wantRows) {
				t.Fatalf("Rows = %v, want %v", perr.Rows, tt.wantRows)
			}
			if !reflect.DeepEqual(perr.Values, tt.wantValues) {
				t.Fatalf("Values = %v, want %v", perr.Values, tt.wantValues)
			}
		})
	}
}

func TestParseDates_SequentialSpecs(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "d1", Type: table.String, Values: []any{"2024-01-01"}},
		table.Column{Name: "d2", Type: table.String, Values: []any{"01.02.2024"}},
	)
	out, err := ParseDates{Specs: []DateSpec{
		{Column: "d1", Format: "2006-01-02"},
		{Column: "d2", Format: "02.01.2006"},
	}}.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	d2, _ := out.Column("d2")
	if d2.Values[0] != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("d2 = %v", d2.Values[0])
	}
}

func TestParseDates_RetargetingParsedColumnFails(t *testing.T) {
	tbl := mustTable(t, table.Column{Name: "d", Type: table.String, Values: []any{"2024-01-01"}})
	_, err := ParseDates{Specs: []DateSpec{
		{Column: "d", Format: "2006-01-02"},
		{Column: "d", Format: "2006-01-02"},
	}}.Apply(tbl)
	var terr table.TypeError
	if !errors.As(err, &terr) {
		t.Fatalf("want TypeError, got %v", err)
	}
	if terr.Column != "d" || terr.Got != table.Date {
		t.Fatalf("TypeError = %+v", terr)
	}
}

func TestParseDates_UnknownColumn(t *testing.T) {
	tbl := mustTable(t, table.Column{Name: "a", Values: []any{"x"}})
	_, err := ParseDates{Specs: []DateSpec{{Column: "ghost", Format: "2006-01-02"}}}.Apply(tbl)
	var nf table.ColumnNotFoundError
	if !errors.As(err, &nf) || nf.Column != "ghost" {
		t.Fatalf("want ColumnNotFoundError{ghost}, got %v", err)
	}
}
