// Package metrics declares the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "harvestlog"

// Metrics groups every collector. Components receive it from the composition
// root; a nil *Metrics disables recording.
type Metrics struct {
	OrderTransitions   *prometheus.CounterVec
	LifecycleRejected  *prometheus.CounterVec
	ChatMessages       *prometheus.CounterVec
	RouteFetches       *prometheus.CounterVec
	RouteFetchDuration prometheus.Histogram
	TransporterSteps   prometheus.Counter
	ActiveOrders       prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrderTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status changes by target status.",
		}, []string{"status"}),
		LifecycleRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_operations_rejected_total",
			Help:      "Rejected order lifecycle operations by operation and reason.",
		}, []string{"operation", "reason"}),
		ChatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages by kind and outcome.",
		}, []string{"kind", "outcome"}),
		RouteFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_fetches_total",
			Help:      "Routing service calls by outcome.",
		}, []string{"outcome"}),
		RouteFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_fetch_duration_seconds",
			Help:      "Time spent fetching one route.",
			Buckets:   prometheus.DefBuckets,
		}),
		TransporterSteps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transporter_steps_total",
			Help:      "Simulated transporter movement steps.",
		}),
		ActiveOrders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_orders",
			Help:      "Orders currently held by the session.",
		}),
	}
}

func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Rejected(operation, reason string) {
	if m == nil {
		return
	}
	m.LifecycleRejected.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) ChatMessage(kind, outcome string) {
	if m == nil {
		return
	}
	m.ChatMessages.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RouteFetch(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RouteFetches.WithLabelValues(outcome).Inc()
	m.RouteFetchDuration.Observe(seconds)
}

func (m *Metrics) TransporterStep() {
	if m == nil {
		return
	}
	m.TransporterSteps.Inc()
}

func (m *Metrics) SetActiveOrders(n int) {
	if m == nil {
		return
	}
	m.ActiveOrders.Set(float64(n))
}
