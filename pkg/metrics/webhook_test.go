package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWebhookMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)

	m.IncReceived("accepted")
	m.IncReceived("accepted")
	m.IncIgnored("duplicate")
	m.IncFailed("cancelled")
	m.IncCRMSync("create", "ok")
	m.IncSubtotalMismatch()
	m.IncUnmappedProducts(3)
	m.ObserveDuration("accepted", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.received.WithLabelValues("accepted")); got != 2 {
		t.Fatalf("expected 2 received, got %v", got)
	}
	if got := testutil.ToFloat64(m.ignored.WithLabelValues("duplicate")); got != 1 {
		t.Fatalf("expected 1 ignored, got %v", got)
	}
	if got := testutil.ToFloat64(m.crmSyncs.WithLabelValues("create", "ok")); got != 1 {
		t.Fatalf("expected 1 crm sync, got %v", got)
	}
	if got := testutil.ToFloat64(m.unmappedProducts); got != 3 {
		t.Fatalf("expected 3 unmapped products, got %v", got)
	}
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.IncReceived("accepted")
	m.IncIgnored("dup")
	m.IncFailed("accepted")
	m.IncCRMSync("update", "error")
	m.IncSubtotalMismatch()
	m.IncUnmappedProducts(1)
	m.ObserveDuration("accepted", time.Second)

	empty := NewWebhookMetrics(nil)
	empty.IncReceived("accepted")
}
