// Package metrics define los collectors Prometheus del servicio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests cuenta requests por método, ruta (patrón chi) y status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petora_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration mide latencia por método y ruta.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "petora_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// FeedDrops cuenta eventos descartados porque el suscriptor no consumía.
	FeedDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petora_changefeed_drops_total",
		Help: "Change events dropped due to slow subscribers",
	}, []string{"driver"})

	// StreamConnections es el gauge de websockets abiertos por topic raíz.
	StreamConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "petora_stream_connections",
		Help: "Open WebSocket change streams",
	}, []string{"topic"})

	// ChatbotCalls cuenta llamadas al modelo por resultado (ok|error|rejected).
	ChatbotCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petora_chatbot_calls_total",
		Help: "Chatbot calls by outcome",
	}, []string{"outcome"})
)
