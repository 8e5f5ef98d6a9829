package prometheus

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
)

// scrape returns the text exposition of the provider.
func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	rec := httptest.NewRecorder()
	provider.GetHTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

// TestProvider_SharedByName checks that metrics requested twice by name are
// the same collector and are exposed with the namespace.
func TestProvider_SharedByName(t *testing.T) {
	provider := NewProvider(log.NewNop())

	provider.GetCounter("packets", metrics.WithDescription("packets seen")).Inc()
	provider.GetCounter("packets").Add(2)

	body := scrape(t, provider)
	assert.Contains(t, body, "# HELP tripso_packets packets seen")
	assert.Contains(t, body, "tripso_packets 3")
}

// TestProvider_CounterVec checks labeled counters and label errors.
func TestProvider_CounterVec(t *testing.T) {
	provider := NewProvider(log.NewNop())

	vec := provider.GetCounterVec("rejected_total", []string{"error"})
	vec.GetMetricWith(metrics.Labels{"error": "overflow"}).Inc()

	// Unknown label names fall back to a no-op counter.
	counter := vec.GetMetricWith(metrics.Labels{"reason": "x"})
	assert.IsType(t, &metrics.NopCounter{}, counter)

	assert.Contains(t, scrape(t, provider), `tripso_rejected_total{error="overflow"} 1`)
}

// TestProvider_Shutdown checks that metrics are unregistered on shutdown.
func TestProvider_Shutdown(t *testing.T) {
	provider := NewProvider(log.NewNop())
	provider.GetHistogram("duration_seconds", []float64{0.1, 1}).Observe(0.5)
	assert.Contains(t, scrape(t, provider), "tripso_duration_seconds_count 1")

	require.NoError(t, provider.Shutdown(context.Background()))
	assert.NotContains(t, scrape(t, provider), "tripso_duration_seconds")
}

// TestProvider_CurryAndUnregister checks curried vectors, label deletion and
// unregistering by type.
func TestProvider_CurryAndUnregister(t *testing.T) {
	provider := NewProvider(log.NewNop())

	vec := provider.GetCounterVec("packets_total", []string{"mode", "verdict"})
	curried := vec.CurryWith(metrics.Labels{"mode": "to-cipso"})
	curried.GetMetricWith(metrics.Labels{"verdict": "drop"}).Inc()
	curried.GetMetricWith(metrics.Labels{"verdict": "accept"}).Inc()
	assert.Contains(t, scrape(t, provider), `tripso_packets_total{mode="to-cipso",verdict="drop"} 1`)

	vec.DeletePartialMatch(metrics.Labels{"verdict": "drop"})
	body := scrape(t, provider)
	assert.NotContains(t, body, `verdict="drop"`)
	assert.Contains(t, body, `verdict="accept"`)

	assert.IsType(t, &metrics.NopCounterVec{}, vec.CurryWith(metrics.Labels{"unknown": "x"}))

	provider.UnregisterMetric(metrics.CounterVecMetric, "packets_total")
	assert.NotContains(t, scrape(t, provider), "tripso_packets_total")
}
