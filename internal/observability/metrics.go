package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodcycle_http_requests_total",
			Help: "Total number of HTTP requests processed by the realtime service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodcycle_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodcycle_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodcycle_ws_events_total",
			Help: "Total number of websocket events by name.",
		},
		[]string{"event"},
	)
	relayDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodcycle_relay_delivered_total",
			Help: "Total number of chat message deliveries to room members.",
		},
	)
	relayDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodcycle_relay_dropped_total",
			Help: "Total number of chat messages dropped before relay.",
		},
		[]string{"reason"},
	)
	broadcastDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodcycle_broadcast_delivered_total",
			Help: "Total number of donation notification deliveries.",
		},
	)
	deliverySkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodcycle_delivery_skipped_total",
			Help: "Total number of deliveries skipped because a connection's queue was full.",
		},
	)
	persistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodcycle_persist_failures_total",
			Help: "Total number of failed chat history writes.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodcycle_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		relayDeliveredTotal,
		relayDroppedTotal,
		broadcastDeliveredTotal,
		deliverySkippedTotal,
		persistFailuresTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func AddRelayDelivered(n int) {
	relayDeliveredTotal.Add(float64(n))
}

func IncRelayDropped(reason string) {
	relayDroppedTotal.WithLabelValues(reason).Inc()
}

func AddBroadcastDelivered(n int) {
	broadcastDeliveredTotal.Add(float64(n))
}

func IncDeliverySkipped() {
	deliverySkippedTotal.Inc()
}

func IncPersistFailure() {
	persistFailuresTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
