package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	GatewayOperations.WithLabelValues("list", "ok").Inc()
	GatewayDuration.WithLabelValues("list").Observe(0.01)
	RateLimitAllowed.WithLabelValues("memory").Inc()

	n, err := testutil.GatherAndCount(reg, "docgate_gateway_operations_total", "docgate_gateway_operation_duration_seconds", "docgate_rate_limit_allowed_total")
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 3)

	require.Panics(t, func() { RegisterCollectors(reg) })
}
