package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ghalamif/AstraLink/internal/ports"
)

func newTestObs(t *testing.T, buf *bytes.Buffer) *PromObs {
	t.Helper()
	return NewPromObs(slog.New(slog.NewTextHandler(buf, nil)), prometheus.NewRegistry())
}

func TestPromObsMetrics(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObs(t, &buf)

	obs.IncCounter("astra_samples_ingested_total", 5)
	if got := testutil.ToFloat64(obs.counters["astra_samples_ingested_total"]); got != 5 {
		t.Fatalf("expected ingested counter 5, got %f", got)
	}

	obs.IncCounter("astra_decode_errors_total", 2)
	if got := testutil.ToFloat64(obs.counters["astra_decode_errors_total"]); got != 2 {
		t.Fatalf("expected decode error counter 2, got %f", got)
	}

	obs.SetGauge("astra_current_altitude_meters", 420)
	if got := testutil.ToFloat64(obs.gauges["astra_current_altitude_meters"]); got != 420 {
		t.Fatalf("expected altitude gauge 420, got %f", got)
	}

	obs.ObserveLatency("astra_ingest_latency_seconds", 0.002)
	hCollector := obs.histos["astra_ingest_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.IncCounter("unknown_metric", 1)
	obs.SetGauge("unknown_gauge", 1)
}

func TestPromObsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewPromObs(nil, reg)
	second := NewPromObs(nil, reg)

	first.IncCounter("astra_samples_ingested_total", 2)
	second.IncCounter("astra_samples_ingested_total", 3)
	if got := testutil.ToFloat64(first.counters["astra_samples_ingested_total"]); got != 5 {
		t.Fatalf("expected shared ingested counter 5, got %f", got)
	}

	second.SetGauge("astra_history_length", 7)
	if got := testutil.ToFloat64(first.gauges["astra_history_length"]); got != 7 {
		t.Fatalf("expected shared history gauge 7, got %f", got)
	}

	if n, err := testutil.GatherAndCount(reg, "astra_samples_ingested_total"); err != nil || n != 1 {
		t.Fatalf("expected one ingested series, got %d (%v)", n, err)
	}
}

func TestPromObsLogsFields(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObs(t, &buf)

	obs.LogInfo("feed_connected", ports.Field{Key: "source", Value: "websocket"})
	obs.LogError("feed_transport_error", errors.New("connection reset"), ports.Field{Key: "url", Value: "ws://pad"})
	obs.LogError("ignored", nil)

	out := buf.String()
	for _, want := range []string{"feed_connected", "source=websocket", "feed_transport_error", "connection reset", "url=ws://pad"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("nil errors should not be logged")
	}
}
