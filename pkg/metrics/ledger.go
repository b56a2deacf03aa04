package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts reconciled events and side-effect results.
type LedgerMetrics struct {
	events  *prometheus.CounterVec
	effects *prometheus.CounterVec
	expired prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_total",
		Help: "Gateway events and client reports by outcome.",
	}, []string{"event", "outcome"})
	effects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_side_effects_total",
		Help: "Dispatched side effects by result.",
	}, []string{"effect", "result"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_records_expired_total",
		Help: "Payment records expired by the sweeper.",
	})
	reg.MustRegister(events, effects, expired)
	return &LedgerMetrics{events: events, effects: effects, expired: expired}
}

func (m *LedgerMetrics) ObserveEvent(event, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

func (m *LedgerMetrics) ObserveEffect(effect string, err error) {
	if m == nil || m.effects == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.effects.WithLabelValues(normalizeLabel(effect), result).Inc()
}

func (m *LedgerMetrics) AddExpired(n int) {
	if m == nil || m.expired == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}
