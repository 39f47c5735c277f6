// Package csv reads a delimited text table into the columnar table type.
// The header row is required; a UTF-8 BOM on the first header cell is
// stripped, and headers can be remapped to canonical names. Every column
// starts life as a string column; typed values only appear downstream.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"tabpipe/internal/parser"
	"tabpipe/internal/table"
)

var _ parser.Parser = (*Parser)(nil)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures the reader. All fields are optional.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// HeaderMap maps source header names to canonical column names, e.g.
	// localized headers to snake_case identifiers.
	HeaderMap map[string]string

	// NormalizeHeaders lowercases headers and replaces spaces with
	// underscores for headers not covered by HeaderMap.
	NormalizeHeaders bool
}

// Parser reads delimited text into a table. Safe to reuse across inputs;
// not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse consumes the whole input. Unlike lenient probers, this reader is
// strict: a malformed row or a row whose width differs from the header is an
// error, never silently skipped.
func (p *Parser) Parse(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty, header row required")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := p.headerNames(head)
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("empty header name")
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("duplicate header %q", n)
		}
		seen[n] = struct{}{}
	}

	values := make([][]any, len(names))
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) != len(names) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(row), len(names))
		}
		for i, v := range row {
			values[i] = append(values[i], any(v))
		}
	}

	cols := make([]table.Column, len(names))
	for i, n := range names {
		if values[i] == nil {
			values[i] = []any{}
		}
		cols[i] = table.Column{Name: n, Type: table.String, Values: values[i]}
	}
	return table.New(cols...)
}

// headerNames produces canonical column names from the raw header row.
func (p *Parser) headerNames(head []string) []string {
	names := make([]string, len(head))
	for i, h := range head {
		c := strings.TrimSpace(h)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if p.opt.HeaderMap != nil {
			if m, ok := p.opt.HeaderMap[c]; ok && m != "" {
				names[i] = m
				continue
			}
		}
		if p.opt.NormalizeHeaders {
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		names[i] = c
	}
	return names
}
