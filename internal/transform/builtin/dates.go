package builtin

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"tabpipe/internal/table"
)

// DateSpec designates one string column to be parsed with one format. The
// format is a Go reference layout, or a strftime pattern (detected by a '%')
// which is translated before use.
type DateSpec struct {
	Column string
	Format string
}

// DateParseError reports every unparseable value of one column, not just the
// first, so the diagnostic is actionable even though the stage aborts on the
// first failing column. Rows holds 0-based positions aligned with Values.
type DateParseError struct {
	Column string
	Format string
	Rows   []int
	Values []string
}

func (e DateParseError) Error() string {
	const sample = 3
	n := len(e.Rows)
	parts := make([]string, 0, sample)
	for i := 0; i < n && i < sample; i++ {
		parts = append(parts, fmt.Sprintf("row %d: %q", e.Rows[i], e.Values[i]))
	}
	suffix := ""
	if n > sample {
		suffix = fmt.Sprintf(" (and %d more)", n-sample)
	}
	return fmt.Sprintf("column %q: %d values do not match format %q: %s%s",
		e.Column, n, e.Format, strings.Join(parts, "; "), suffix)
}

// ParseDates converts designated string columns into temporal columns, one
// spec at a time in the given order. Parsing is strict: the whole value must
// match the layout and the date must be a real calendar date. Nulls pass
// through untouched. A successfully parsed column replaces the original in
// place, so later specs see the table as already transformed; pointing a
// spec at a column that is no longer a string is a type error.
type ParseDates struct {
	Specs []DateSpec
}

func (ParseDates) Name() string { return "parse-dates" }

func (p ParseDates) Apply(t *table.Table) (*table.Table, error) {
	for _, spec := range p.Specs {
		if err := parseColumn(t, spec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseColumn(t *table.Table, spec DateSpec) error {
	c, ok := t.Column(spec.Column)
	if !ok {
		return table.ColumnNotFoundError{Column: spec.Column}
	}
	if c.Type != table.String {
		return table.TypeError{Column: spec.Column, Want: table.String, Got: c.Type}
	}

	layout, err := resolveLayout(spec.Format)
	if err != nil {
		return fmt.Errorf("column %q: %w", spec.Column, err)
	}

	parsed := make([]any, len(c.Values))
	var badRows []int
	var badValues []string
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			badRows = append(badRows, i)
			badValues = append(badValues, fmt.Sprint(v))
			continue
		}
		ts, err := time.Parse(layout, s)
		if err != nil {
			badRows = append(badRows, i)
			badValues = append(badValues, s)
			continue
		}
		parsed[i] = ts
	}
	if len(badRows) > 0 {
		return DateParseError{
			Column: spec.Column,
			Format: spec.Format,
			Rows:   badRows,
			Values: badValues,
		}
	}

	c.Values = parsed
	if layoutHasClock(layout) {
		c.Type = table.Datetime
	} else {
		c.Type = table.Date
	}
	return nil
}

// resolveLayout accepts either a Go reference layout or a strftime pattern.
func resolveLayout(format string) (string, error) {
	if format == "" {
		return "2006-01-02", nil
	}
	if strings.ContainsRune(format, '%') {
		layout, err := strftime.Layout(format)
		if err != nil {
			return "", fmt.Errorf("bad strftime format %q: %w", format, err)
		}
		return layout, nil
	}
	return format, nil
}

// layoutHasClock reports whether the layout carries a time-of-day component,
// which decides Date vs Datetime for the resulting column.
func layoutHasClock(layout string) bool {
	return strings.Contains(layout, "15") ||
		strings.Contains(layout, "04") ||
		strings.Contains(layout, "05") ||
		strings.Contains(layout, "3:") ||
		strings.Contains(layout, "PM")
}
