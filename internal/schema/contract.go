// Package schema holds the declared-schema contract and the row validator
// built on it. A contract names a subset of columns and the primitive type
// each must satisfy; columns absent from either the contract or the table
// are ignored.
package schema

import (
	"fmt"

	"tabpipe/internal/table"
)

// Field declares the expected primitive type for one column.
type Field struct {
	Name string
	Type table.Type
}

// Contract is a declared schema: an ordered list of typed fields. Order only
// affects which mismatch is reported first; validation itself is per-cell.
type Contract struct {
	Name   string
	Fields []Field
}

// FieldConfig is the serialized form of a Field as it appears in pipeline
// config files, with the type as a name string.
type FieldConfig struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// ContractConfig is the serialized form of a Contract.
type ContractConfig struct {
	Name   string        `json:"name" yaml:"name"`
	Fields []FieldConfig `json:"fields" yaml:"fields"`
}

// Build resolves the type names of a ContractConfig into a Contract.
func (c ContractConfig) Build() (Contract, error) {
	out := Contract{Name: c.Name, Fields: make([]Field, 0, len(c.Fields))}
	for _, f := range c.Fields {
		if f.Name == "" {
			return Contract{}, fmt.Errorf("contract %q: field with empty name", c.Name)
		}
		typ, err := table.ParseType(f.Type)
		if err != nil {
			return Contract{}, fmt.Errorf("contract %q: field %q: %w", c.Name, f.Name, err)
		}
		out.Fields = append(out.Fields, Field{Name: f.Name, Type: typ})
	}
	return out, nil
}
