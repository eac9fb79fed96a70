package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	GatewayOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docgate", Subsystem: "gateway", Name: "operations_total", Help: "Gateway operations by operation and outcome (ok, invalid, serialization, engine)."},
		[]string{"operation", "outcome"},
	)
	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "docgate", Subsystem: "gateway", Name: "operation_duration_seconds", Help: "Time spent in gateway operations, engine call included.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(GatewayOperations)
	reg.MustRegister(GatewayDuration)
}
