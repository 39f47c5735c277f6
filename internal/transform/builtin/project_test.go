package builtin

import (
	"errors"
	"reflect"
	"testing"

	"tabpipe/internal/table"
)

func TestProject_RenameThenSelect(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "old_a", Values: []any{"1"}},
		table.Column{Name: "b", Values: []any{"2"}},
		table.Column{Name: "c", Values: []any{"3"}},
	)
	// Selection references the post-rename name.
	out, err := Project{
		Rename: map[string]string{"old_a": "a"},
		Select: []string{"c", "a"},
	}.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := out.Names(); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("Names = %v, want [c a]", got)
	}
}

func TestProject_PassThrough(t *testing.T) {
	tbl := mustTable(t,
		table.Column{Name: "a", Values: []any{"1"}},
		table.Column{Name: "b", Values: []any{"2"}},
	)
	out, err := Project{}.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := out.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names = %v, want [a b]", got)
	}
}

func TestProject_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		missing string
	}{
		{
			name:    "rename_key_missing",
			project: Project{Rename: map[string]string{"ghost": "x"}},
			missing: "ghost",
		},
		{
			name:    "selection_entry_missing",
			project: Project{Select: []string{"a", "ghost"}},
			missing: "ghost",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, table.Column{Name: "a", Values: []any{"1"}})
			_, err := tt.project.Apply(tbl)
			var nf table.ColumnNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("want ColumnNotFoundError, got %v", err)
			}
			if nf.Column != tt.missing {
				t.Fatalf("error names %q, want %q", nf.Column, tt.missing)
			}
		})
	}
}
