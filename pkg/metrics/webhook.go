package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records outcomes of inbound order-event processing.
type WebhookMetrics struct {
	received         *prometheus.CounterVec
	ignored          *prometheus.CounterVec
	failed           *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	crmSyncs         *prometheus.CounterVec
	subtotalMismatch prometheus.Counter
	unmappedProducts prometheus.Counter
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_received",
		Help: "Inbound webhook events by lifecycle key.",
	}, []string{"key"})
	ignored := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_ignored",
		Help: "Webhook events skipped (unknown key, duplicate delivery).",
	}, []string{"reason"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_failed",
		Help: "Webhook events that aborted with an error.",
	}, []string{"key"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_event_duration_seconds",
		Help:    "End-to-end processing time for webhook events.",
		Buckets: prometheus.DefBuckets,
	}, []string{"key"})
	crmSyncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_syncs_total",
		Help: "CRM lead create/update attempts by operation and outcome.",
	}, []string{"op", "outcome"})
	subtotalMismatch := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_subtotal_mismatches_total",
		Help: "Synced leads whose CRM product total disagreed with the order subtotal.",
	})
	unmappedProducts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_unmapped_products_total",
		Help: "Line items or add-ons that could not be mapped to a CRM product.",
	})
	reg.MustRegister(received, ignored, failed, duration, crmSyncs, subtotalMismatch, unmappedProducts)
	return &WebhookMetrics{
		received:         received,
		ignored:          ignored,
		failed:           failed,
		duration:         duration,
		crmSyncs:         crmSyncs,
		subtotalMismatch: subtotalMismatch,
		unmappedProducts: unmappedProducts,
	}
}

// IncReceived counts an inbound event for the given lifecycle key.
func (m *WebhookMetrics) IncReceived(key string) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(normalizeLabel(key)).Inc()
}

// IncIgnored counts an event skipped for the given reason.
func (m *WebhookMetrics) IncIgnored(reason string) {
	if m == nil || m.ignored == nil {
		return
	}
	m.ignored.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncFailed counts an event that aborted with an error.
func (m *WebhookMetrics) IncFailed(key string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(key)).Inc()
}

// ObserveDuration records the processing time for the given lifecycle key.
func (m *WebhookMetrics) ObserveDuration(key string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(key)).Observe(d.Seconds())
}

// IncCRMSync counts a CRM sync attempt ("create"/"update", "ok"/"error").
func (m *WebhookMetrics) IncCRMSync(op, outcome string) {
	if m == nil || m.crmSyncs == nil {
		return
	}
	m.crmSyncs.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncSubtotalMismatch counts a reconciliation warning.
func (m *WebhookMetrics) IncSubtotalMismatch() {
	if m == nil || m.subtotalMismatch == nil {
		return
	}
	m.subtotalMismatch.Inc()
}

// IncUnmappedProducts counts unmapped catalog keys.
func (m *WebhookMetrics) IncUnmappedProducts(n int) {
	if m == nil || m.unmappedProducts == nil || n <= 0 {
		return
	}
	m.unmappedProducts.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
