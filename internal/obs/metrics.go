package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Accepted lifecycle state transitions by entity type and action.",
		},
		[]string{"entity_type", "action"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification delivery outcomes.",
		},
		[]string{"outcome"}, // sent, failed, dropped
	)
)

// Init registers the metrics with the default registry.
func Init() {
	prometheus.MustRegister(transitionsTotal, notificationsTotal)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncTransition counts one accepted state transition.
func IncTransition(entityType, action string) {
	transitionsTotal.WithLabelValues(entityType, action).Inc()
}

// IncNotification counts one notification delivery outcome.
func IncNotification(outcome string) {
	notificationsTotal.WithLabelValues(outcome).Inc()
}
