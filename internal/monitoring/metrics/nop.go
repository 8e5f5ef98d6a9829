package metrics

import (
	"context"
	"net/http"
)

// NopProvider discards every metric. It is used by the offline translator
// and in tests.
type NopProvider struct{}

var _ Provider = &NopProvider{}

func (p *NopProvider) GetCounter(_ string, _ ...MetricOption) Counter {
	return &NopCounter{}
}

func (p *NopProvider) GetHistogram(_ string, _ []float64, _ ...MetricOption) Histogram {
	return &NopHistogram{}
}

func (p *NopProvider) GetCounterVec(_ string, _ []string, _ ...MetricOption) CounterVec {
	return &NopCounterVec{}
}

func (p *NopProvider) UnregisterMetric(_ MetricType, _ string) {}

func (p *NopProvider) Shutdown(_ context.Context) error {
	return nil
}

type NopCounter struct{}

var _ Counter = &NopCounter{}

func (c *NopCounter) Inc() {}

func (c *NopCounter) Add(_ float64) {}

type NopHistogram struct{}

var _ Histogram = &NopHistogram{}

func (h *NopHistogram) Observe(_ float64) {}

type NopCounterVec struct{}

var _ CounterVec = &NopCounterVec{}

func (cv *NopCounterVec) GetMetricWith(_ Labels) Counter {
	return &NopCounter{}
}

func (cv *NopCounterVec) CurryWith(_ Labels) CounterVec {
	return &NopCounterVec{}
}

func (cv *NopCounterVec) Delete(_ Labels) {}

func (cv *NopCounterVec) DeletePartialMatch(_ Labels) {}

type NopGatherer struct{}

var _ Gatherer = &NopGatherer{}

func (g *NopGatherer) GetHTTPHandler() http.Handler {
	return http.NotFoundHandler()
}
