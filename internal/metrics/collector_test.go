package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector("tutor", reg, zap.NewNop()), reg
}

func TestRecordHTTPRequest(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordHTTPRequest("POST", "/session", "200", 25*time.Millisecond)
	c.RecordHTTPRequest("POST", "/session", "200", 30*time.Millisecond)
	c.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/session", "200")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/health", "200")), 1e-9)
}

func TestRecordInteraction(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordInteraction("answered", 2*time.Second)
	c.RecordInteraction("answered", 3*time.Second)
	c.RecordInteraction("blocked", 100*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(c.interactionsTotal.WithLabelValues("answered")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.interactionsTotal.WithLabelValues("blocked")), 1e-9)
}

func TestRecordDegraded(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordDegraded("memory")
	c.RecordDegraded("memory")
	c.RecordDegraded("affect")

	assert.InDelta(t, 2, testutil.ToFloat64(c.degradedTotal.WithLabelValues("memory")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.degradedTotal.WithLabelValues("affect")), 1e-9)
}

func TestActiveSessionsGauge(t *testing.T) {
	c, _ := newTestCollector(t)

	c.SetActiveSessions(7)
	assert.InDelta(t, 7, testutil.ToFloat64(c.activeSessions), 1e-9)

	c.SetActiveSessions(3)
	assert.InDelta(t, 3, testutil.ToFloat64(c.activeSessions), 1e-9)
}

func TestIsolatedRegistries(t *testing.T) {
	// Two collectors on separate registries must not collide.
	regA := prometheus.NewRegistry()
	regB := prometheus.NewRegistry()

	a := NewCollector("tutor", regA, zap.NewNop())
	b := NewCollector("tutor", regB, zap.NewNop())
	require.NotNil(t, a)
	require.NotNil(t, b)

	a.RecordInteraction("answered", time.Second)
	assert.InDelta(t, 0, testutil.ToFloat64(b.interactionsTotal.WithLabelValues("answered")), 1e-9)
}
