package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vms_http_requests_total",
		Help: "HTTP requests processed, partitioned by method, path and status.",
	}, []string{"method", "path", "status"})

	// HTTPDuration tracks request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vms_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// VisitorTransitions counts lifecycle transitions by action.
	VisitorTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vms_visitor_transitions_total",
		Help: "Visitor lifecycle transitions (ENTERED, EXITED, OVERDUE_MARKED).",
	}, []string{"action"})

	// QREmailsSent counts QR pass emails by outcome.
	QREmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vms_qr_emails_total",
		Help: "Visitor QR pass emails, partitioned by outcome.",
	}, []string{"outcome"})

	// WSClients tracks currently connected websocket subscribers.
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vms_websocket_clients",
		Help: "Connected websocket dashboard clients.",
	})
)
