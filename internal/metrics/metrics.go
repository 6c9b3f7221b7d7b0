package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StrategyExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideasmatter_strategy_executions_total",
			Help: "Total number of research strategy executions by final status",
		},
		[]string{"approach", "status"},
	)

	StrategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideasmatter_strategy_duration_seconds",
			Help:    "Duration of research strategy executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"approach"},
	)

	StrategiesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ideasmatter_strategies_active",
			Help: "Number of research strategies currently executing",
		},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideasmatter_ai_requests_total",
			Help: "Total number of AI provider requests by outcome",
		},
		[]string{"provider", "outcome"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ideasmatter_ai_request_duration_seconds",
			Help: "Duration of AI provider requests in seconds",
		},
		[]string{"provider"},
	)

	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideasmatter_ai_fallbacks_total",
			Help: "Number of times a component used its canned payload instead of AI output",
		},
		[]string{"component"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideasmatter_http_requests_total",
			Help: "Total number of HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
