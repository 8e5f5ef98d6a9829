package translator

import (
	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
)

var durationBuckets = []float64{1e-6, 2.5e-6, 5e-6, 1e-5, 2.5e-5, 5e-5, 1e-4, 1e-3}

type translatorMetrics struct {
	packets    metrics.CounterVec
	rejected   metrics.CounterVec
	icmpErrors metrics.Counter
	duration   metrics.Histogram
}

func newTranslatorMetrics(provider metrics.Provider) *translatorMetrics {
	return &translatorMetrics{
		packets: provider.GetCounterVec(
			"packets_total",
			[]string{"verdict"},
			metrics.WithDescription("Processed packets by verdict."),
		),
		rejected: provider.GetCounterVec(
			"rejected_total",
			[]string{ErrorLabel},
			metrics.WithDescription("Dropped packets by reason."),
		),
		icmpErrors: provider.GetCounter(
			"icmp_errors_total",
			metrics.WithDescription("Parameter Problem messages that could not be sent."),
		),
		duration: provider.GetHistogram(
			"translation_duration_seconds",
			durationBuckets,
			metrics.WithDescription("Time spent processing a packet."),
		),
	}
}
