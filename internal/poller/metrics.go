package poller

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the poller phase and cycle outcomes. A nil *Metrics records
// nothing.
type Metrics struct {
	state  prometheus.Gauge
	cycles *prometheus.CounterVec
}

// NewMetrics creates the poller metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eversense",
			Subsystem: "poller",
			Name:      "state",
			Help:      "Current poller phase (0 idle, 1 bootstrap, 2 backfill, 3 steady, 4 stopped).",
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eversense",
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Steady-state poll cycles by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.state, m.cycles)
	return m
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}

func (m *Metrics) cycle(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.cycles.WithLabelValues("error").Inc()
		return
	}
	m.cycles.WithLabelValues("ok").Inc()
}
