package client

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts authentication and API activity. A nil *Metrics records
// nothing.
type Metrics struct {
	logins   *prometheus.CounterVec
	requests *prometheus.CounterVec
	readings prometheus.Counter
}

// NewMetrics creates the client metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eversense",
			Subsystem: "client",
			Name:      "logins_total",
			Help:      "Token endpoint exchanges by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eversense",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Care API requests by endpoint and result.",
		}, []string{"endpoint", "result"}),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eversense",
			Subsystem: "client",
			Name:      "readings_total",
			Help:      "Sensor glucose readings kept after normalization.",
		}),
	}
	reg.MustRegister(m.logins, m.requests, m.readings)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) login(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) request(endpoint string, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, result(err)).Inc()
}

func (m *Metrics) addReadings(n int) {
	if m == nil {
		return
	}
	m.readings.Add(float64(n))
}
