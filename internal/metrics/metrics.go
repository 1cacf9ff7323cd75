package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Controller operation metrics
var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_operations_total",
			Help: "Total number of controller operations.",
		},
		[]string{"controller", "operation", "status"},
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests to the central backend.",
		},
		[]string{"endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		OperationsTotal,
		BackendRequestsTotal,
	)
}
