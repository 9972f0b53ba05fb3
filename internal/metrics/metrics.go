package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook intake metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_webhook_events_total",
			Help: "Total number of webhook events received, by terminal outcome",
		},
		[]string{"outcome"},
	)

	EventBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_webhook_event_bytes_total",
			Help: "Total bytes of authenticated webhook payloads",
		},
	)

	// Side-effect stage metrics
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "delivery_render_duration_seconds",
			Help:    "Duration of document rendering in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "delivery_publish_duration_seconds",
			Help:    "Duration of artifact upload plus URL signing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_notify_failures_total",
			Help: "Total number of failed notification sends",
		},
	)
)
