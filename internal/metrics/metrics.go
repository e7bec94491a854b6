// Package metrics implements the router's observation surface on Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the relay. It implements
// router.Metrics.
type Metrics struct {
	messagesSent      prometheus.Counter
	messagesDelivered prometheus.Counter
	messagesOffline   prometheus.Counter

	connections    prometheus.Counter
	disconnections prometheus.Counter
	activeConns    prometheus.Gauge

	errors     *prometheus.CounterVec
	rateLimits prometheus.Counter

	messageLatency    prometheus.Histogram
	websocketDuration prometheus.Histogram
}

// New registers all collectors with reg and returns the instance.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		messagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepdrift_messages_sent_total",
			Help: "Total number of messages sent through the relay",
		}),
		messagesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepdrift_messages_delivered_total",
			Help: "Total number of messages successfully delivered to recipients",
		}),
		messagesOffline: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepdrift_messages_offline_total",
			Help: "Total number of messages queued for offline delivery",
		}),
		connections: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepdrift_connections_total",
			Help: "Total number of WebSocket connections established",
		}),
		disconnections: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepdrift_disconnections_total",
			Help: "Total number of WebSocket disconnections",
		}),
		activeConns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deepdrift_active_connections",
			Help: "Number of currently active WebSocket connections",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deepdrift_errors_total",
			Help: "Total number of errors",
		}, []string{"error_type"}),
		rateLimits: factory.NewCounter(prometheus.CounterOpts{
			Name: "deepdrift_rate_limits_total",
			Help: "Total number of rate limit hits",
		}),
		messageLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deepdrift_message_latency_seconds",
			Help:    "Message processing latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
		websocketDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deepdrift_websocket_duration_seconds",
			Help:    "WebSocket connection duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 3600, 7200},
		}),
	}
}

func (m *Metrics) ConnectionOpened() {
	m.connections.Inc()
	m.activeConns.Inc()
}

func (m *Metrics) ConnectionClosed(duration time.Duration) {
	m.disconnections.Inc()
	m.activeConns.Dec()
	m.websocketDuration.Observe(duration.Seconds())
}

func (m *Metrics) MessageSent(deliveredOnline bool) {
	m.messagesSent.Inc()
	if deliveredOnline {
		m.messagesDelivered.Inc()
	} else {
		m.messagesOffline.Inc()
	}
}

func (m *Metrics) RateLimited() {
	m.rateLimits.Inc()
}

func (m *Metrics) Error(errorType string) {
	m.errors.WithLabelValues(errorType).Inc()
}

// DispatchStarted starts the latency timer for one frame dispatch.
func (m *Metrics) DispatchStarted() func() {
	start := time.Now()
	return func() {
		m.messageLatency.Observe(time.Since(start).Seconds())
	}
}
