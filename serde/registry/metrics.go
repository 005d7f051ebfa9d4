package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opLoadsKey   = "loads_key"
	opLoadsValue = "loads_value"
	opDumpsKey   = "dumps_key"
	opDumpsValue = "dumps_value"

	statusOK    = "ok"
	statusError = "error"
)

var promOps = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hermod",
	Subsystem: "serde",
	Name:      "operations_total",
	Help:      "Total number of serialization operations by outcome",
}, []string{"op", "status"})

func init() {
	prometheus.MustRegister(promOps)
}

// Observe counts the outcome of a serialization operation.
func observe(op string, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}

	promOps.WithLabelValues(op, status).Inc()
}
