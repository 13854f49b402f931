package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ghalamif/AstraLink/internal/adapters/decode"
	"github.com/ghalamif/AstraLink/internal/adapters/queue"
	"github.com/ghalamif/AstraLink/internal/ports"
)

func TestEnqueueWithPolicyBlock(t *testing.T) {
	q := &mockQueue{failures: 1}
	pol := ports.Policy{
		OnQueueFull: "block",
		IdleSleep:   time.Millisecond,
	}
	obs := &mockObs{}

	if ok := enqueueWithPolicy(context.Background(), q, ports.QueuedSample{}, pol, obs); !ok {
		t.Fatalf("expected enqueue to eventually succeed")
	}
	if q.calls != 2 {
		t.Fatalf("expected two enqueue attempts, got %d", q.calls)
	}
}

func TestEnqueueWithPolicyDrop(t *testing.T) {
	q := &mockQueue{failAlways: true}
	pol := ports.Policy{OnQueueFull: "drop"}
	obs := &mockObs{}

	if ok := enqueueWithPolicy(context.Background(), q, ports.QueuedSample{}, pol, obs); ok {
		t.Fatalf("expected enqueueWithPolicy to fail")
	}
	if obs.errorCount() == 0 {
		t.Fatalf("expected drop to log an error")
	}
}

func TestEnqueueWithPolicyBlockStopsOnCancel(t *testing.T) {
	q := &mockQueue{failAlways: true}
	pol := ports.Policy{OnQueueFull: "block", IdleSleep: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok := enqueueWithPolicy(ctx, q, ports.QueuedSample{}, pol, &mockObs{}); ok {
		t.Fatalf("expected blocked enqueue to give up after cancel")
	}
}

func TestRunFeedPipelineSkipsUndecodable(t *testing.T) {
	src := &scriptedSource{payloads: []string{
		`{"time":1,"altitude":5}`,
		`not json`,
		`42`,
		`{"time":2,"altitude":"12.5"}`,
	}}
	q := queue.NewMemQueue(8)
	pol := ports.Policy{MaxQueueLen: 8, OnQueueFull: "block", IdleSleep: time.Millisecond}
	obs := &mockObs{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := RunFeedPipeline(ctx, src, decode.NewJSONDecoder(), q, pol, obs); err != nil {
		t.Fatalf("RunFeedPipeline returned error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < 2 || obs.counter("astra_decode_errors_total") < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: queued=%d decode_errors=%v", q.Len(), obs.counter("astra_decode_errors_total"))
		}
		time.Sleep(time.Millisecond)
	}

	items := q.DequeueBatch(10)
	if len(items) != 2 {
		t.Fatalf("expected 2 queued samples, got %d", len(items))
	}
	if items[0].Sample.Time != 1 || items[1].Sample.Time != 2 {
		t.Fatalf("expected arrival order, got %+v", items)
	}
	if items[1].Sample.Altitude != 12.5 {
		t.Fatalf("expected numeric string to be coerced, got %v", items[1].Sample.Altitude)
	}
	if items[1].Raw != `{"time":2,"altitude":"12.5"}` {
		t.Fatalf("expected raw payload kept verbatim, got %q", items[1].Raw)
	}
}

func TestRunFeedPipelineStartError(t *testing.T) {
	src := &scriptedSource{startErr: errors.New("connection refused")}
	err := RunFeedPipeline(context.Background(), src, decode.NewJSONDecoder(), &mockQueue{}, ports.Policy{}, &mockObs{})
	if err == nil || !strings.Contains(err.Error(), "scripted") {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxLoggedPayload+10)
	if got := truncate(long); len(got) != maxLoggedPayload+3 {
		t.Fatalf("unexpected truncated length %d", len(got))
	}
	if got := truncate("short"); got != "short" {
		t.Fatalf("short payload changed: %q", got)
	}
}
