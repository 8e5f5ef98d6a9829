package prometheus

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
)

// Namespace prefixes every metric name.
const Namespace = "tripso"

// Provider is a [metrics.Metrics] implementation backed by a dedicated
// prometheus registry, which also carries the process and Go runtime
// collectors.
type Provider struct {
	registry *prometheus.Registry

	counters    *Registry[prometheus.Counter]
	histograms  *Registry[prometheus.Histogram]
	countersVec *Registry[*CounterVec]

	log *log.Logger
}

var _ metrics.Metrics = &Provider{}

func NewProvider(logger *log.Logger) *Provider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return &Provider{
		registry:    registry,
		counters:    newRegistry[prometheus.Counter](registry),
		histograms:  newRegistry[prometheus.Histogram](registry),
		countersVec: newRegistry[*CounterVec](registry),
		log:         logger.With(log.String("metrics_provider", "prometheus")),
	}
}

func (m *Provider) GetCounter(name string, opts ...metrics.MetricOption) metrics.Counter {
	options := metrics.ApplyOptions(opts)

	counter, err := m.counters.GetOrCreateMetric(name, func() prometheus.Counter {
		return prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Name:        name,
				Help:        options.Description,
				ConstLabels: prometheus.Labels(options.ConstLabels),
			},
		)
	})
	if err != nil {
		m.log.Error("failed to create counter", log.String("name", name), log.Error(err))
		return &metrics.NopCounter{}
	}

	return counter
}

func (m *Provider) GetHistogram(name string, buckets []float64, opts ...metrics.MetricOption) metrics.Histogram {
	options := metrics.ApplyOptions(opts)

	histogram, err := m.histograms.GetOrCreateMetric(name, func() prometheus.Histogram {
		return prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   Namespace,
				Name:        name,
				Help:        options.Description,
				Buckets:     buckets,
				ConstLabels: prometheus.Labels(options.ConstLabels),
			},
		)
	})
	if err != nil {
		m.log.Error("failed to create histogram", log.String("name", name), log.Error(err))
		return &metrics.NopHistogram{}
	}

	return histogram
}

func (m *Provider) GetCounterVec(name string, labelNames []string, opts ...metrics.MetricOption) metrics.CounterVec {
	options := metrics.ApplyOptions(opts)

	counterVec, err := m.countersVec.GetOrCreateMetric(name, func() *CounterVec {
		return newCounterVec(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Name:        name,
				Help:        options.Description,
				ConstLabels: prometheus.Labels(options.ConstLabels),
			},
			labelNames,
			m.log,
		)
	})
	if err != nil {
		m.log.Error("failed to create counter vector", log.String("name", name), log.Error(err))
		return &metrics.NopCounterVec{}
	}

	return counterVec
}

func (m *Provider) UnregisterMetric(metricType metrics.MetricType, name string) {
	switch metricType {
	case metrics.CounterMetric:
		m.counters.DeleteMetric(name)
	case metrics.HistogramMetric:
		m.histograms.DeleteMetric(name)
	case metrics.CounterVecMetric:
		m.countersVec.DeleteMetric(name)
	default:
		m.log.Error("unknown metric type", log.String("type", metricType.String()))
	}
}

func (m *Provider) GetHTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown unregisters every metric created by the provider.
func (m *Provider) Shutdown(_ context.Context) error {
	m.counters.Shutdown()
	m.histograms.Shutdown()
	m.countersVec.Shutdown()

	return nil
}
