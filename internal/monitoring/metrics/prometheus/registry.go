package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry keeps track of the collectors of one kind registered in a
// prometheus registry, so that a metric requested twice by name is shared.
type Registry[T prometheus.Collector] struct {
	registry *prometheus.Registry
	metrics  map[string]T
	mu       sync.Mutex
}

// MetricConstructorFunc creates a collector that is not registered yet.
type MetricConstructorFunc[T prometheus.Collector] func() T

func newRegistry[T prometheus.Collector](registry *prometheus.Registry) *Registry[T] {
	return &Registry[T]{
		registry: registry,
		metrics:  make(map[string]T),
	}
}

// GetOrCreateMetric returns the metric registered under name, creating it
// with constructor on first use.
func (m *Registry[T]) GetOrCreateMetric(name string, constructor MetricConstructorFunc[T]) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if metric, exists := m.metrics[name]; exists {
		return metric, nil
	}

	metric := constructor()
	if err := m.registry.Register(metric); err != nil {
		// The same collector may have been registered through another
		// Registry of the same type.
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				m.metrics[name] = existing
				return existing, nil
			}
		}
		return metric, err
	}

	m.metrics[name] = metric

	return metric, nil
}

// DeleteMetric unregisters the metric with the given name.
func (m *Registry[T]) DeleteMetric(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if metric, exists := m.metrics[name]; exists {
		m.registry.Unregister(metric)
		delete(m.metrics, name)
	}
}

// Shutdown unregisters every known metric.
func (m *Registry[T]) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, metric := range m.metrics {
		m.registry.Unregister(metric)
	}
	clear(m.metrics)
}
