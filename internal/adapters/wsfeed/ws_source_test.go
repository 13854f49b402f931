package wsfeed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

func telemetryServer(t *testing.T, messages []string, hold bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()

		ctx := r.Context()
		for _, m := range messages {
			if err := c.Write(ctx, websocket.MessageText, []byte(m)); err != nil {
				return
			}
		}
		if !hold {
			c.Close(websocket.StatusInternalError, "boom")
			return
		}
		// Wait for the client to hang up.
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSourceDeliversMessagesInOrder(t *testing.T) {
	msgs := []string{`{"time":1}`, `{"time":2}`, `not json`}
	srv := telemetryServer(t, msgs, true)

	src, err := NewSource(Config{URL: wsURL(srv)}, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	out := make(chan *domain.Packet, len(msgs))
	if err := src.Start(out); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i, want := range msgs {
		select {
		case pkt := <-out:
			if pkt.Raw != want {
				t.Fatalf("message %d: expected %q, got %q", i, want, pkt.Raw)
			}
			if pkt.ReceivedAt.IsZero() {
				t.Fatalf("message %d: expected receive time", i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}

	done := make(chan struct{})
	go func() {
		_ = src.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("stop did not release the connection")
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
}

func TestSourceRejectsDoubleStart(t *testing.T) {
	srv := telemetryServer(t, nil, true)
	src, err := NewSource(Config{URL: wsURL(srv)}, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	out := make(chan *domain.Packet, 1)
	if err := src.Start(out); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer src.Stop()

	if err := src.Start(out); err == nil {
		t.Fatalf("expected second start to fail")
	}
}

func TestSourceDialFailure(t *testing.T) {
	src, err := NewSource(Config{URL: "ws://127.0.0.1:1/ws/telemetry", DialTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if err := src.Start(make(chan *domain.Packet)); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestSourceReportsTransportError(t *testing.T) {
	srv := telemetryServer(t, []string{`{"time":1}`}, false)
	obs := &recordingObs{}

	src, err := NewSource(Config{URL: wsURL(srv)}, obs)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	out := make(chan *domain.Packet, 4)
	if err := src.Start(out); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer src.Stop()

	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if obs.errorCount() > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected transport error to be logged")
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.URL != "ws://localhost:8000/ws/telemetry" {
		t.Fatalf("unexpected default url %s", cfg.URL)
	}
	if cfg.ReadLimit != 64<<10 || cfg.DialTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

type recordingObs struct {
	mu     sync.Mutex
	errors []error
}

func (r *recordingObs) LogInfo(string, ...ports.Field) {}
func (r *recordingObs) LogError(_ string, err error, _ ...ports.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}
func (r *recordingObs) LogCritical(string, error, ...ports.Field) {}
func (r *recordingObs) IncCounter(string, float64)                {}
func (r *recordingObs) ObserveLatency(string, float64)            {}
func (r *recordingObs) SetGauge(string, float64)                  {}

func (r *recordingObs) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}
