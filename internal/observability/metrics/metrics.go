// Package metrics exposes prometheus counters for marketplace business events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type Metrics struct {
	contactsTotal           *prometheus.CounterVec
	creditsPurchasedTotal   prometheus.Counter
	paymentEventsTotal      *prometheus.CounterVec
	duplicatesResolvedTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		contactsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "teacher_contacts_total",
			Help:      "Teacher unlock events by access mode.",
		}, []string{"mode"}),
		creditsPurchasedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "credits_purchased_total",
			Help:      "Contact credits purchased across all schools.",
		}),
		paymentEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "payment_events_total",
			Help:      "Payment provider events by resulting status.",
		}, []string{"provider", "status"}),
		duplicatesResolvedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "duplicates_resolved_total",
			Help:      "Duplicate school records removed by reconciliation.",
		}),
	}
}

func (m *Metrics) RecordContact(mode string) {
	if m == nil {
		return
	}
	m.contactsTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) RecordCreditsPurchased(count int64) {
	if m == nil {
		return
	}
	m.creditsPurchasedTotal.Add(float64(count))
}

func (m *Metrics) RecordPaymentEvent(provider, status string) {
	if m == nil {
		return
	}
	m.paymentEventsTotal.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordDuplicatesResolved(count int) {
	if m == nil {
		return
	}
	m.duplicatesResolvedTotal.Add(float64(count))
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
