// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmarket_submissions_total",
		Help: "Submission intake outcomes.",
	}, []string{"outcome"})

	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmarket_reviews_total",
		Help: "Review decisions applied.",
	}, []string{"decision"})

	PaymentsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmarket_payments_settled_total",
		Help: "Payments reaching a terminal status.",
	}, []string{"status"})

	WebhookReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskmarket_webhook_replays_total",
		Help: "Webhook deliveries short-circuited as idempotent replays.",
	})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskmarket_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
