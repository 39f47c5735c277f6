// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the pipeline.
//
// A global, pluggable backend defaults to a no-op implementation, so metric
// calls are always safe even when nothing is configured. Concrete systems
// (Prometheus Pushgateway) live in subpackages and are selected by the CLI;
// the pipeline itself only depends on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system must implement.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style observation in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes buffered metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b != nil {
		backend = b
	}
}

// Flush delegates to the current backend.
func Flush() error { return backend.Flush() }

// RecordStage records one pipeline stage execution: a count labelled with
// the outcome plus the stage duration.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}
	backend.IncCounter("tabpipe_stage_total", 1, lbls)
	backend.ObserveDuration("tabpipe_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows records a row-level count per kind (read, written, dropped).
func RecordRows(job, kind string, n int) {
	backend.IncCounter("tabpipe_rows_total", float64(n), Labels{"job": job, "kind": kind})
}
