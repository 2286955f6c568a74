package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ID generator metrics
	IDsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasktracker_ids_generated_total",
		Help: "Total number of identifiers allocated",
	})

	IDErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_id_errors_total",
		Help: "Identifier allocations that failed, by kind",
	}, []string{"kind"})

	// Reminder metrics
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_reminders_sent_total",
		Help: "Telegram reminders delivered, by kind",
	}, []string{"kind"})

	// API metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
