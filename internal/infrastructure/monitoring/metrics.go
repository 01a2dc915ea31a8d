package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "componentbridge"

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Bridge metrics
	MessagesInbound  *prometheus.CounterVec
	MessagesOutbound *prometheus.CounterVec
	DecodeErrors     *prometheus.CounterVec
	PostErrors       prometheus.Counter
	QueuedMessages   prometheus.Gauge
	PendingReplies   prometheus.Gauge
	LostReplies      prometheus.Counter
	EvictedReplies   prometheus.Counter
	SessionsReady    prometheus.Counter
	ThemesActivated  prometheus.Counter

	// Save metrics
	SavesScheduled prometheus.Counter
	SavesFlushed   *prometheus.CounterVec
	SavedItems     prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
	WSRateLimited prometheus.Counter

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveConnections int64   `json:"active_connections"`
	MessagesIn        int64   `json:"messages_in"`
	MessagesOut       int64   `json:"messages_out"`
	TotalDuration     float64 `json:"total_duration_seconds"`
	RequestCount      int64   `json:"request_count"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics registers a metrics collector with reg. Passing a fresh
// prometheus.NewRegistry keeps collectors isolated, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	// HTTP metrics
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
	m.RequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"method", "path"},
	)

	// Bridge metrics
	m.MessagesInbound = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_inbound_total",
			Help:      "Decoded messages received from the host",
		},
		[]string{"channel", "action"},
	)
	m.MessagesOutbound = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_outbound_total",
			Help:      "Messages posted to the host",
		},
		[]string{"channel", "action"},
	)
	m.DecodeErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Inbound payloads dropped because they could not be decoded",
		},
		[]string{"channel"},
	)
	m.PostErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_errors_total",
		Help:      "Outbound posts rejected by the transport",
	})
	m.QueuedMessages = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queued_messages",
		Help:      "Messages waiting for the session handshake",
	})
	m.PendingReplies = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_replies",
		Help:      "Sent messages awaiting a host reply",
	})
	m.LostReplies = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lost_replies_total",
		Help:      "Replies that matched no pending message",
	})
	m.EvictedReplies = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evicted_replies_total",
		Help:      "Pending entries dropped for exceeding their maximum age",
	})
	m.SessionsReady = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ready_total",
		Help:      "Completed session handshakes",
	})
	m.ThemesActivated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "themes_activated_total",
		Help:      "Theme lists applied",
	})

	// Save metrics
	m.SavesScheduled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saves_scheduled_total",
		Help:      "Save requests accepted by the scheduler",
	})
	m.SavesFlushed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_flushed_total",
			Help:      "Save messages sent to the host",
		},
		[]string{"mode"},
	)
	m.SavedItems = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saved_items_total",
		Help:      "Items carried by flushed saves",
	})

	// WebSocket metrics
	m.WSConnections = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
	m.WSMessages = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Total number of WebSocket messages",
		},
		[]string{"direction", "type"},
	)
	m.WSRateLimited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ws_rate_limited_total",
		Help:      "WebSocket messages rejected by the rate limiter",
	})

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordInbound records a decoded inbound message
func (m *Metrics) RecordInbound(channel, action string) {
	if m == nil {
		return
	}
	m.MessagesInbound.WithLabelValues(channel, action).Inc()
	m.mu.Lock()
	m.snapshot.MessagesIn++
	m.mu.Unlock()
}

// RecordOutbound records a message handed to the transport
func (m *Metrics) RecordOutbound(channel, action string) {
	if m == nil {
		return
	}
	m.MessagesOutbound.WithLabelValues(channel, action).Inc()
	m.mu.Lock()
	m.snapshot.MessagesOut++
	m.mu.Unlock()
}

// RecordDecodeError records a dropped inbound payload
func (m *Metrics) RecordDecodeError(channel string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(channel).Inc()
}

// IncPostErrors counts a rejected outbound post
func (m *Metrics) IncPostErrors() {
	if m == nil {
		return
	}
	m.PostErrors.Inc()
}

// SetQueued sets the number of messages held for the handshake
func (m *Metrics) SetQueued(n int) {
	if m == nil {
		return
	}
	m.QueuedMessages.Set(float64(n))
}

// SetPending sets the number of messages awaiting replies
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.PendingReplies.Set(float64(n))
}

// IncLostReplies counts a reply without a pending entry
func (m *Metrics) IncLostReplies() {
	if m == nil {
		return
	}
	m.LostReplies.Inc()
}

// AddEvicted counts pending entries dropped by age
func (m *Metrics) AddEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EvictedReplies.Add(float64(n))
}

// IncSessionsReady counts a completed handshake
func (m *Metrics) IncSessionsReady() {
	if m == nil {
		return
	}
	m.SessionsReady.Inc()
}

// IncThemesActivated counts an applied theme list
func (m *Metrics) IncThemesActivated() {
	if m == nil {
		return
	}
	m.ThemesActivated.Inc()
}

// IncSavesScheduled counts an accepted save request
func (m *Metrics) IncSavesScheduled() {
	if m == nil {
		return
	}
	m.SavesScheduled.Inc()
}

// RecordSaveFlush records a save message carrying items
func (m *Metrics) RecordSaveFlush(mode string, items int) {
	if m == nil {
		return
	}
	m.SavesFlushed.WithLabelValues(mode).Inc()
	m.SavedItems.Add(float64(items))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSRateLimited counts a message rejected by the rate limiter
func (m *Metrics) IncWSRateLimited() {
	if m == nil {
		return
	}
	m.WSRateLimited.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
