// Package probe samples the head of a delimited input and drafts a pipeline
// config from it: canonical column names, inferred column types as a
// contract, and date formats for columns that look like dates. The sampler
// is deliberately lenient (malformed and misaligned rows are skipped) so a
// messy file still yields a usable draft; the strict reader then enforces
// shape at run time.
package probe

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tabpipe/internal/config"
	"tabpipe/internal/datasource"
	"tabpipe/internal/schema"
	"tabpipe/internal/table"
)

// Options control sampling and the drafted config.
type Options struct {
	// MaxBytes to sample from the start of the input. Zero means 256 KiB.
	MaxBytes int

	// Delimiter is the field separator. Zero means ','.
	Delimiter rune

	// Job names the drafted pipeline. Defaults to "draft".
	Job string

	// MaxRows caps the number of sampled data rows. Zero means 10000.
	MaxRows int
}

// dateLayouts are tried in order for date-only columns.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
}

// timestampLayouts are tried in order for columns with a time component.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Probe samples src and drafts a pipeline config for it. The caller fills
// in the source location and output before running the draft.
func Probe(ctx context.Context, src datasource.Source, opt Options) (config.Pipeline, error) {
	maxBytes := opt.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 256 << 10
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return config.Pipeline{}, err
	}
	defer rc.Close()

	sample, err := io.ReadAll(io.LimitReader(rc, int64(maxBytes)))
	if err != nil {
		return config.Pipeline{}, fmt.Errorf("read sample: %w", err)
	}
	return Draft(sample, opt)
}

// Draft builds the pipeline config from raw sampled bytes.
func Draft(sample []byte, opt Options) (config.Pipeline, error) {
	// Cut at the last newline so a half-read final line cannot skew
	// inference.
	if i := bytes.LastIndexByte(sample, '\n'); i > 0 {
		sample = sample[:i+1]
	}
	headers, rows, err := readSample(sample, opt.Delimiter, opt.MaxRows)
	if err != nil {
		return config.Pipeline{}, err
	}
	if len(headers) == 0 {
		return config.Pipeline{}, fmt.Errorf("sample has no header row")
	}

	job := opt.Job
	if job == "" {
		job = "draft"
	}

	headerMap := make(map[string]string, len(headers))
	normalized := make([]string, len(headers))
	for i, h := range headers {
		n := normalizeFieldName(h)
		normalized[i] = n
		if n != h {
			headerMap[h] = n
		}
	}
	if len(headerMap) == 0 {
		headerMap = nil
	}

	types, layouts := inferColumns(headers, rows)

	p := config.Pipeline{
		Job:    job,
		Source: config.Source{Kind: "file"},
		Reader: config.Reader{
			HeaderMap:        headerMap,
			NormalizeHeaders: true,
		},
		Output: config.Output{Format: "csv", Path: job + "_out.csv"},
	}
	if opt.Delimiter != 0 && opt.Delimiter != ',' {
		p.Reader.Delimiter = string(opt.Delimiter)
	}

	contract := &schema.ContractConfig{Name: job}
	for i, n := range normalized {
		contract.Fields = append(contract.Fields, schema.FieldConfig{
			Name: n,
			Type: types[i].String(),
		})
		if types[i] == table.Date || types[i] == table.Datetime {
			p.Transform.Dates = append(p.Transform.Dates, config.DateSpec{
				Column: n,
				Format: layouts[i],
			})
		}
	}
	p.Contract = contract
	return p, nil
}

// Render marshals the drafted config as indented JSON with a trailing
// newline, ready to write to a file.
func Render(p config.Pipeline) ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// readSample reads the header plus up to maxRows aligned data rows,
// skipping malformed and misaligned lines.
func readSample(data []byte, delim rune, maxRows int) ([]string, [][]string, error) {
	if maxRows <= 0 {
		maxRows = 10000
	}
	r := csv.NewReader(bytes.NewReader(data))
	if delim != 0 {
		r.Comma = delim
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var headers []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil, nil, nil
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		rec[0] = strings.TrimPrefix(rec[0], "\uFEFF")
		headers = rec
		break
	}

	rows := make([][]string, 0, 64)
	for len(rows) < maxRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) != len(headers) {
			// Misaligned rows would skew per-column inference.
			continue
		}
		rows = append(rows, rec)
	}
	return headers, rows, nil
}

// inferColumns guesses one type per column and, for date-like columns, the
// layout that matched every non-empty sample.
func inferColumns(headers []string, rows [][]string) ([]table.Type, []string) {
	n := len(headers)
	cols := make([][]string, n)
	for _, row := range rows {
		for i := 0; i < n; i++ {
			if v := strings.TrimSpace(row[i]); v != "" {
				cols[i] = append(cols[i], v)
			}
		}
	}
	types := make([]table.Type, n)
	layouts := make([]string, n)
	for i := range cols {
		types[i], layouts[i] = inferColumn(cols[i])
	}
	return types, layouts
}

// inferColumn narrows from the most specific type that every non-empty
// value satisfies. An all-empty column stays a string.
func inferColumn(values []string) (table.Type, string) {
	if len(values) == 0 {
		return table.String, ""
	}
	if allMatch(values, isInt) {
		return table.Int, ""
	}
	if allMatch(values, isBool) {
		return table.Bool, ""
	}
	if allMatch(values, isFloat) {
		return table.Float, ""
	}
	for _, layout := range timestampLayouts {
		if allParse(values, layout) {
			return table.Datetime, layout
		}
	}
	for _, layout := range dateLayouts {
		if allParse(values, layout) {
			return table.Date, layout
		}
	}
	return table.String, ""
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func allParse(vals []string, layout string) bool {
	for _, v := range vals {
		if _, err := time.Parse(layout, v); err != nil {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat excludes values that already parse as int so integer columns stay
// integers.
func isFloat(s string) bool {
	if isInt(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f", "yes", "no", "y", "n", "1", "0":
		return true
	default:
		return false
	}
}

// normalizeFieldName converts arbitrary header text into a lowercase ASCII
// identifier: accents stripped via NFD, marks removed, then [a-z0-9_] kept
// with space, dash and dot collapsing to single underscores.
func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
