package metrics_test

import (
	"testing"

	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	m := metrics.NewMetrics(reg)
	require.NotNil(t, m)

	m.Fetches.WithLabelValues("employees", "stale").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(m.Fetches.WithLabelValues("employees", "stale")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.Runs.WithLabelValues("success")), 0)
}

func TestNewMetrics_DoubleRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_ = metrics.NewMetrics(reg)

	assert.Panics(t, func() { metrics.NewMetrics(reg) })
}
