package table

import "fmt"

// ColumnNotFoundError occurs when a rename key, selection entry, null-drop
// target or date-parse target references a column the table does not have at
// that point in the pipeline.
type ColumnNotFoundError struct{ Column string }

func (e ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// ColumnCollisionError occurs when a rename would give a column the same name
// as another column that is not itself being renamed away.
type ColumnCollisionError struct{ Column string }

func (e ColumnCollisionError) Error() string {
	return fmt.Sprintf("rename collides with existing column %q", e.Column)
}

// TypeError occurs when a stage is pointed at a column of the wrong type,
// e.g. date-parsing a column that is no longer a string column.
type TypeError struct {
	Column string
	Want   Type
	Got    Type
}

func (e TypeError) Error() string {
	return fmt.Sprintf("column %q has type %s, want %s", e.Column, e.Got, e.Want)
}
