package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notifyd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "GitHub webhook deliveries by event, action and outcome.",
		},
		[]string{"event", "action", "outcome"},
	)
	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "chat",
			Name:      "notifications_total",
			Help:      "Chat notifications by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	githubRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "github",
			Name:      "api_requests_total",
			Help:      "GitHub API requests by method, endpoint and status.",
		},
		[]string{"method", "endpoint", "status"},
	)
	githubDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notifyd",
			Subsystem: "github",
			Name:      "api_request_duration_seconds",
			Help:      "GitHub API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			webhookEvents, notifications,
			githubRequests, githubDuration,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordWebhookEvent(event, action, outcome string) {
	RegisterMetrics()
	if action == "" {
		action = "none"
	}
	webhookEvents.WithLabelValues(event, action, outcome).Inc()
}

func RecordNotification(kind, outcome string) {
	RegisterMetrics()
	notifications.WithLabelValues(kind, outcome).Inc()
}

func RecordGitHubRequest(method, endpoint string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	githubRequests.WithLabelValues(method, endpoint, statusLabel).Inc()
	githubDuration.WithLabelValues(method, endpoint, statusLabel).Observe(duration.Seconds())
}
