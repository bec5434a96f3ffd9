package vm

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeCommitted = "committed"
	outcomeReverted  = "reverted"
)

type metrics struct {
	transactions *prometheus.CounterVec
	logs         prometheus.Counter
	callDepth    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Subsystem: "vm",
			Name:      "transactions_total",
			Help:      "Applied transactions by outcome.",
		}, []string{"outcome"}),
		logs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "custody",
			Subsystem: "vm",
			Name:      "logs_total",
			Help:      "Logs emitted by committed transactions.",
		}),
		callDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "custody",
			Subsystem: "vm",
			Name:      "call_depth",
			Help:      "Deepest call nesting reached per transaction.",
			Buckets:   []float64{1, 2, 3, 4, 8, 16, 32, 64},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.transactions, m.logs, m.callDepth)
	}

	return m
}
