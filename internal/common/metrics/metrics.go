package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_messages_dispatched_total",
			Help: "Total number of messages dispatched per channel type",
		},
		[]string{"channel_type", "recipient_type"},
	)

	MessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_messages_failed_total",
			Help: "Total number of message sends rejected by a provider",
		},
		[]string{"channel_type"},
	)

	EscalationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_escalations_created_total",
			Help: "Total number of escalation messages created per event",
		},
		[]string{"event_id"},
	)

	DeliveryCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_delivery_callbacks_total",
			Help: "Total number of delivery callbacks applied per reported status",
		},
		[]string{"status"},
	)

	CallbackAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_callback_anomalies_total",
			Help: "Total number of out-of-order or unknown delivery callbacks",
		},
		[]string{"reason"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "hub_escalation_sweep_duration_seconds",
			Help: "Duration of escalation sweep runs in seconds",
		},
	)
)
