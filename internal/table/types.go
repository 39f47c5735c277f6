package table

import (
	"fmt"
	"strings"
)

// Type enumerates the primitive column types a Table can carry. String is the
// type every freshly parsed column starts with; Date and Datetime are only
// produced by the date-parsing stage.
type Type uint8

const (
	String Type = iota
	Int
	Float
	Bool
	Date
	Datetime
)

// String returns the canonical lowercase name used in configs and errors.
func (t Type) String() string {
	switch t {
	case String:
		return "str"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case Datetime:
		return "datetime"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseType maps a declared type name onto a Type. It accepts the canonical
// names plus common database-ish aliases (bigint, integer, real, text,
// boolean, timestamp) so that contracts written for SQL sinks keep working.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "str", "string", "text", "varchar":
		return String, nil
	case "int", "integer", "bigint", "int2", "int4", "int8":
		return Int, nil
	case "float", "real", "double", "float8", "numeric":
		return Float, nil
	case "bool", "boolean":
		return Bool, nil
	case "date":
		return Date, nil
	case "datetime", "timestamp", "timestamptz":
		return Datetime, nil
	default:
		return String, fmt.Errorf("unknown type %q", s)
	}
}
