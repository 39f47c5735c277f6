package csv

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	in := "a,b\n1,x\n2,y\n"
	tbl, err := NewParser(Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := tbl.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names = %v", got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	b, _ := tbl.Column("b")
	if !reflect.DeepEqual(b.Values, []any{"x", "y"}) {
		t.Fatalf("b = %v", b.Values)
	}
}

func TestParse_BOMAndHeaderMap(t *testing.T) {
	in := "\uFEFFPČV,Full Name\n7,ann\n"
	tbl, err := NewParser(Options{
		HeaderMap:        map[string]string{"PČV": "pcv"},
		NormalizeHeaders: true,
	}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := tbl.Names(); !reflect.DeepEqual(got, []string{"pcv", "full_name"}) {
		t.Fatalf("Names = %v", got)
	}
}

func TestParse_CustomDelimiter(t *testing.T) {
	in := "a;b\n1;2\n"
	tbl, err := NewParser(Options{Comma: ';'}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, _ := tbl.Column("a")
	if a.Values[0] != "1" {
		t.Fatalf("a = %v", a.Values)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty_input", in: ""},
		{name: "ragged_row", in: "a,b\n1\n"},
		{name: "duplicate_header", in: "a,a\n1,2\n"},
		{name: "empty_header_name", in: "a,\n1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewParser(Options{}).Parse(strings.NewReader(tt.in)); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestParse_NoDataRows(t *testing.T) {
	tbl, err := NewParser(Options{}).Parse(strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d, want 0", tbl.Len())
	}
}
