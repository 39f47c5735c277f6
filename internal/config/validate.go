// This file adds a lightweight linter for Pipeline values. It performs
// static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"tabpipe/internal/filter"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "output.format",
// "transform.filters[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the slice has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline without running
// it. Callers may decide whether to treat warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateTransform(p.Transform)...)
	issues = append(issues, validateContract(p)...)
	issues = append(issues, validateOutput(p.Output)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.url",
				Message:  fmt.Sprintf("http source requires an http(s) URL, got %q", s.URL),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q", s.Kind),
		})
	}

	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue

	// Rename targets must not collide with each other.
	seen := map[string]string{}
	for from, to := range t.Rename {
		if to == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "transform.rename",
				Message:  fmt.Sprintf("rename of %q has an empty target", from),
			})
			continue
		}
		if prev, ok := seen[to]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "transform.rename",
				Message:  fmt.Sprintf("both %q and %q rename to %q", prev, from, to),
			})
		}
		seen[to] = from
	}

	// Selection must not repeat a column.
	sel := map[string]struct{}{}
	for _, name := range t.Select {
		if _, ok := sel[name]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "transform.select",
				Message:  fmt.Sprintf("column %q selected more than once", name),
			})
		}
		sel[name] = struct{}{}
	}

	// Filter expressions must at least compile; column existence is only
	// known at run time.
	for i, expr := range t.Filters {
		if _, err := filter.Compile(expr); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform.filters[%d]", i),
				Message:  err.Error(),
			})
		}
	}

	for i, d := range t.Dates {
		if strings.TrimSpace(d.Column) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform.dates[%d].column", i),
				Message:  "date spec requires a column name",
			})
		}
	}

	if t.Dedup != nil {
		if len(t.Dedup.Keys) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "transform.dedup.keys",
				Message:  "dedup requires at least one key column",
			})
		}
		switch t.Dedup.Policy {
		case "", "keep-first", "keep-last":
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "transform.dedup.policy",
				Message:  fmt.Sprintf("unknown dedup policy %q; use keep-first or keep-last", t.Dedup.Policy),
			})
		}
	}

	return issues
}

func validateContract(p Pipeline) []Issue {
	var issues []Issue
	if p.Contract == nil {
		if p.ValidateAll {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "validate_all",
				Message:  "validate_all is set but no contract is declared; nothing will be validated",
			})
		}
		return issues
	}
	if len(p.Contract.Fields) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "contract.fields",
			Message:  "contract has no fields; it will not enforce anything",
		})
	}
	if _, err := p.Contract.Build(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "contract",
			Message:  err.Error(),
		})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	switch o.Format {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.format",
			Message:  "output.format must not be empty",
		})
		return issues
	case "csv", "arrow":
		if strings.TrimSpace(o.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.path",
				Message:  fmt.Sprintf("%s output requires a non-empty path", o.Format),
			})
		}
	case "postgres", "sqlite", "mysql":
		if strings.TrimSpace(o.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.db.dsn",
				Message:  "database output requires a dsn",
			})
		}
		if strings.TrimSpace(o.DB.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.db.table",
				Message:  "database output requires a table name",
			})
		}
		if o.DB.BatchSize < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.db.batch_size",
				Message:  "batch_size must not be negative",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.format",
			Message:  fmt.Sprintf("unknown output format %q", o.Format),
		})
	}

	return issues
}
