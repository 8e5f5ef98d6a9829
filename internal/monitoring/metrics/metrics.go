// Package metrics declares the metrics used by the translator independently
// of the backend that collects them.
package metrics

import (
	"context"
	"fmt"
	"net/http"
)

// Metrics is a provider of metrics that can also expose them.
type Metrics interface {
	Provider
	Gatherer
}

// Provider creates or returns already registered metrics by name.
type Provider interface {
	GetCounter(name string, opts ...MetricOption) Counter
	GetHistogram(name string, buckets []float64, opts ...MetricOption) Histogram
	GetCounterVec(name string, labelNames []string, opts ...MetricOption) CounterVec

	UnregisterMetric(metricType MetricType, name string)
	Shutdown(ctx context.Context) error
}

// Gatherer exposes collected metrics over HTTP.
type Gatherer interface {
	GetHTTPHandler() http.Handler
}

type Counter interface {
	Inc()
	Add(float64)
}

type Histogram interface {
	Observe(float64)
}

type Labels map[string]string

type CounterVec interface {
	GetMetricWith(Labels) Counter
	CurryWith(Labels) CounterVec
	Delete(Labels)
	DeletePartialMatch(Labels)
}

type MetricType int

const (
	CounterMetric MetricType = iota + 1
	HistogramMetric
	CounterVecMetric
)

func (m MetricType) String() string {
	switch m {
	case CounterMetric:
		return "counter"
	case HistogramMetric:
		return "histogram"
	case CounterVecMetric:
		return "counter_vec"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// MetricOption configures a metric on creation.
type MetricOption func(opts *MetricOpts)

// MetricOpts are the optional parts of a metric definition.
type MetricOpts struct {
	ConstLabels Labels
	Description string
}

// WithDescription sets the help text of a metric.
func WithDescription(description string) MetricOption {
	return func(opts *MetricOpts) {
		opts.Description = description
	}
}

// WithConstLabels attaches labels with fixed values to a metric.
func WithConstLabels(labels Labels) MetricOption {
	return func(opts *MetricOpts) {
		opts.ConstLabels = labels
	}
}

// ApplyOptions folds opts into MetricOpts.
func ApplyOptions(opts []MetricOption) MetricOpts {
	var options MetricOpts
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
