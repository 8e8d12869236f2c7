package contract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one contract instance.
type Metrics struct {
	Operations *prometheus.CounterVec
	Disbursed  prometheus.Counter
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "okinoko_grants_operations_total",
			Help: "Contract operations by action and result kind",
		}, []string{"op", "result"}),
		Disbursed: f.NewCounter(prometheus.CounterOpts{
			Name: "okinoko_grants_disbursed_total",
			Help: "Treasury value paid out by executed proposals",
		}),
	}
}

// observe counts one finished operation. A nil receiver is a no-op.
func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(KindOf(err))
	}
	m.Operations.WithLabelValues(op, result).Inc()
}

// addDisbursed tracks paid out value in whole units.
func (m *Metrics) addDisbursed(a Amount) {
	if m == nil {
		return
	}
	m.Disbursed.Add(AmountToFloat(a))
}
