package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookEventsTotal        *prometheus.CounterVec
	WebhookDurationSeconds    *prometheus.HistogramVec
	WebhookVerificationsTotal *prometheus.CounterVec
	WebhookRejectedTotal      *prometheus.CounterVec
	WebhookDroppedEventsTotal prometheus.Counter

	// Send API metrics
	SendRequestsTotal   *prometheus.CounterVec
	SendDurationSeconds prometheus.Histogram

	// Search metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec

	// Session metrics
	SessionsActive prometheus.Gauge

	// Background job metrics
	JobRunsTotal       *prometheus.CounterVec
	JobDurationSeconds *prometheus.HistogramVec

	factory promauto.Factory
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	m := &Metrics{
		factory: factory,

		// Webhook metrics
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_webhook_events_total",
				Help: "Total number of webhook events by event type and outcome",
			},
			[]string{"event_type", "outcome"}, // outcome: delivered, degraded, aborted, ignored, panic
		),

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zoky_webhook_duration_seconds",
				Help:    "Event processing duration in seconds by event type",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20}, // Search + two sends
			},
			[]string{"event_type"}, // event_type: message, postback
		),

		WebhookVerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_webhook_verifications_total",
				Help: "Total number of subscription handshakes by result",
			},
			[]string{"result"}, // result: success, forbidden, missing_params
		),

		WebhookRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_webhook_rejected_total",
				Help: "Total number of rejected webhook deliveries by reason",
			},
			[]string{"reason"}, // reason: malformed, not_page, invalid_signature
		),

		WebhookDroppedEventsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "zoky_webhook_dropped_events_total",
				Help: "Total number of batched messaging events beyond the first in an entry",
			},
		),

		// Send API metrics
		SendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_send_requests_total",
				Help: "Total number of Send API calls by status",
			},
			[]string{"status"}, // status: success, rejected, error
		),

		SendDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zoky_send_duration_seconds",
				Help:    "Send API call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),

		// Search metrics
		SearchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_search_requests_total",
				Help: "Total number of outbound search requests by topic and status",
			},
			[]string{"topic", "status"}, // status: success, no_result, error, timeout
		),

		SearchDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zoky_search_duration_seconds",
				Help:    "Outbound search duration in seconds by topic",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"topic"}, // topic: movie, football
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_search_cache_hits_total",
				Help: "Total number of search cache hits by topic",
			},
			[]string{"topic"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_search_cache_misses_total",
				Help: "Total number of search cache misses by topic",
			},
			[]string{"topic"},
		),

		// Singleflight metrics
		SingleflightDedupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_singleflight_dedup_total",
				Help: "Total number of deduplicated searches (callers that shared another call's result)",
			},
			[]string{"topic"},
		),

		// Session metrics
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "zoky_sessions_active",
				Help: "Number of senders with a live session",
			},
		),

		// Background job metrics
		JobRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoky_job_runs_total",
				Help: "Total number of background job runs by job and status",
			},
			[]string{"job", "status"}, // job: session_sweep, cache_cleanup
		),

		JobDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zoky_job_duration_seconds",
				Help:    "Background job duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
			[]string{"job"},
		),
	}

	return m
}

// RecordWebhookEvent records one processed messaging event.
func (m *Metrics) RecordWebhookEvent(eventType, outcome string, duration float64) {
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordVerification records a subscription handshake result.
func (m *Metrics) RecordVerification(result string) {
	m.WebhookVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordWebhookRejected records a webhook delivery that was not processed.
func (m *Metrics) RecordWebhookRejected(reason string) {
	m.WebhookRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordDroppedEvents records batched events that were skipped.
func (m *Metrics) RecordDroppedEvents(n int) {
	if n > 0 {
		m.WebhookDroppedEventsTotal.Add(float64(n))
	}
}

// RecordSend records one Send API call.
func (m *Metrics) RecordSend(status string, duration float64) {
	m.SendRequestsTotal.WithLabelValues(status).Inc()
	m.SendDurationSeconds.Observe(duration)
}

// RecordSearch records one outbound search request.
func (m *Metrics) RecordSearch(topic, status string, duration float64) {
	m.SearchRequestsTotal.WithLabelValues(topic, status).Inc()
	m.SearchDurationSeconds.WithLabelValues(topic).Observe(duration)
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(topic string) {
	m.CacheHitsTotal.WithLabelValues(topic).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(topic string) {
	m.CacheMissesTotal.WithLabelValues(topic).Inc()
}

// RecordSingleflightDedup records a search that shared an in-flight result.
func (m *Metrics) RecordSingleflightDedup(topic string) {
	m.SingleflightDedupTotal.WithLabelValues(topic).Inc()
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.SessionsActive.Set(float64(n))
}

// RecordJob records a background job run.
func (m *Metrics) RecordJob(job, status string, duration float64) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
	m.JobDurationSeconds.WithLabelValues(job).Observe(duration)
}

// TrackLogDropped exposes the remote log sink's dropped-record count,
// read at scrape time. Call it once per registry.
func (m *Metrics) TrackLogDropped(dropped func() uint64) {
	m.factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "zoky_log_records_dropped",
			Help: "Log records discarded because the remote sink buffer was full",
		},
		func() float64 { return float64(dropped()) },
	)
}
