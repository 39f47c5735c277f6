// Package prompush adapts the metrics.Backend interface to a Prometheus
// Pushgateway. All Prometheus-specific dependencies are contained here so
// the rest of the project can swap metric systems without changes.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"tabpipe/internal/metrics"
)

// Backend pushes stage and row metrics to a Prometheus Pushgateway.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec
	stageDuration *prometheus.SummaryVec
	rowCounter    *prometheus.CounterVec
}

// NewBackend constructs the backend. jobName becomes the Pushgateway "job"
// grouping key; gatewayURL is the Pushgateway base URL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tabpipe"
	}

	reg := prometheus.NewRegistry()
	stageCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tabpipe_stage_total",
		Help: "Pipeline stage executions, partitioned by stage and status.",
	}, []string{"stage", "status"})
	stageDuration := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "tabpipe_stage_duration_seconds",
		Help:       "Pipeline stage duration in seconds, partitioned by stage and status.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"stage", "status"})
	rowCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tabpipe_rows_total",
		Help: "Row-level counts per kind (read, written, dropped).",
	}, []string{"kind"})

	for _, c := range []prometheus.Collector{stageCounter, stageDuration, rowCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
	}, nil
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "tabpipe_stage_total":
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
	case "tabpipe_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	}
}

// ObserveDuration implements metrics.Backend.
func (b *Backend) ObserveDuration(name string, seconds float64, labels metrics.Labels) {
	if name == "tabpipe_stage_duration_seconds" {
		b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(seconds)
	}
}

// Flush pushes the registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push()
}
