package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auconnect_notifications_created_total",
		Help: "Total number of notifications created, by type",
	}, []string{"type"})

	// EmailsSent counts notification email attempts by outcome
	// ("sent", "failed", "skipped").
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auconnect_notification_emails_total",
		Help: "Notification email attempts by outcome",
	}, []string{"outcome"})

	// TaskFailures counts background tasks that returned an error, panicked or
	// were dropped because the queue was full.
	TaskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auconnect_task_failures_total",
		Help: "Background task failures by task name and reason",
	}, []string{"task", "reason"})

	// CommentsCreated counts created comments by kind ("comment", "reply").
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auconnect_comments_created_total",
		Help: "Total number of comments created",
	}, []string{"kind"})

	// WebSocketConnections is the gauge of open realtime connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auconnect_websocket_connections",
		Help: "Number of open WebSocket connections",
	})

	// WebSocketDrops counts realtime messages dropped due to backpressure.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auconnect_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to a full send buffer",
	})
)
