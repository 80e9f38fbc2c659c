package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "netenum"

type Metrics struct {
	Sessions    prometheus.Counter
	Addresses   prometheus.Counter
	ParseErrors prometheus.Counter
}

// New registers the enumeration counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sessions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Enumeration sessions started.",
		}),
		Addresses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "addresses_emitted_total",
			Help:      "Addresses written by all sessions.",
		}),
		ParseErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Range strings rejected at session construction.",
		}),
	}
}
