package pagecache

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache traffic.
type Metrics struct {
	Lookups *prometheus.CounterVec // label result: hit | miss
	Stores  prometheus.Counter
	Errors  *prometheus.CounterVec // label op: get | set | clear | encode | decode
}

// NewMetrics registers the cache counters with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "pagecache",
			Name:      "lookups_total",
			Help:      "Page cache lookups by result.",
		}, []string{"result"}),
		Stores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "pagecache",
			Name:      "stores_total",
			Help:      "Rendered pages written to the cache.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postboard",
			Subsystem: "pagecache",
			Name:      "errors_total",
			Help:      "Backend errors by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.Lookups, m.Stores, m.Errors)
	}
	return m
}
