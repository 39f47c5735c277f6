package filter

import (
	"errors"
	"testing"
)

func TestCompile_Malformed(t *testing.T) {
	_, err := Compile("a >")
	var inv InvalidFilterError
	if !errors.As(err, &inv) {
		t.Fatalf("want InvalidFilterError, got %v", err)
	}
	if inv.Expr != "a >" {
		t.Fatalf("Expr = %q", inv.Expr)
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		row     map[string]any
		want    bool
		wantErr bool
	}{
		{name: "int_comparison", expr: "amount > 10", row: map[string]any{"amount": int64(15)}, want: true},
		{name: "string_equality", expr: "region == 'eu'", row: map[string]any{"region": "eu"}, want: true},
		{name: "conjunction", expr: "a > 1 && b < 5", row: map[string]any{"a": int64(2), "b": int64(3)}, want: true},
		{name: "false_result", expr: "amount > 10", row: map[string]any{"amount": int64(5)}, want: false},
		{name: "unknown_column", expr: "ghost == 1", row: map[string]any{"amount": int64(1)}, wantErr: true},
		{name: "non_bool_result", expr: "amount * 2", row: map[string]any{"amount": int64(1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := p.Eval(tt.row)
			if tt.wantErr {
				var inv InvalidFilterError
				if !errors.As(err, &inv) {
					t.Fatalf("want InvalidFilterError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Eval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEval_NullCell(t *testing.T) {
	p, err := Compile("v == 1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// A null cell participates as nil; equality against a number is false.
	got, err := p.Eval(map[string]any{"v": nil})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got {
		t.Fatal("null == 1 evaluated true")
	}
}
