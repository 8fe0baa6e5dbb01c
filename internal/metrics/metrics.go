package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts persisted notification records by kind
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_notifications_created_total",
		Help: "Number of notification records persisted, by kind.",
	}, []string{"kind"})

	// NotificationsPublished counts live deliveries handed to at least one subscriber
	NotificationsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devhub_notifications_published_total",
		Help: "Number of notifications delivered to at least one live subscriber.",
	})

	// NotificationsDropped counts creation attempts that failed at persistence
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devhub_notifications_dropped_total",
		Help: "Number of notifications lost to persistence errors.",
	})

	// RealtimeConnections tracks currently open WebSocket subscriptions
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devhub_realtime_connections",
		Help: "Currently open realtime subscriptions.",
	})
)
