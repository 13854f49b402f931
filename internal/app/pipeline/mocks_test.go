package pipeline

import (
	"errors"
	"sync"

	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
	"github.com/ghalamif/AstraLink/internal/telemetry"
)

type mockQueue struct {
	mu         sync.Mutex
	calls      int
	failures   int
	failAlways bool
	items      []ports.QueuedSample
}

func (m *mockQueue) Enqueue(item ports.QueuedSample) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAlways {
		return false
	}
	if m.failures > 0 {
		m.failures--
		return false
	}
	m.items = append(m.items, item)
	return true
}

func (m *mockQueue) DequeueBatch(max int) []ports.QueuedSample { return nil }

func (m *mockQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type mockObs struct {
	mu       sync.Mutex
	errors   []string
	infos    []string
	counters map[string]float64
	gauges   map[string]float64
	latency  int
}

func (m *mockObs) LogInfo(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockObs) LogError(msg string, err error, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockObs) LogCritical(msg string, err error, fields ...ports.Field) {
	m.LogError(msg, err, fields...)
}

func (m *mockObs) IncCounter(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]float64)
	}
	m.counters[name] += v
}

func (m *mockObs) ObserveLatency(string, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency++
}

func (m *mockObs) SetGauge(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gauges == nil {
		m.gauges = make(map[string]float64)
	}
	m.gauges[name] = v
}

func (m *mockObs) counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func (m *mockObs) gauge(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[name]
}

func (m *mockObs) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

// scriptedSource emits a fixed list of payloads once started.
type scriptedSource struct {
	payloads []string
	startErr error
	stopped  bool
}

func (s *scriptedSource) Start(out chan<- *domain.Packet) error {
	if s.startErr != nil {
		return s.startErr
	}
	go func() {
		for _, p := range s.payloads {
			out <- &domain.Packet{Raw: p}
		}
	}()
	return nil
}

func (s *scriptedSource) Stop() error {
	s.stopped = true
	return nil
}

func (s *scriptedSource) Name() string { return "scripted" }

type recordingSink struct {
	mu    sync.Mutex
	snaps []*telemetry.Snapshot
	fail  bool
}

func (r *recordingSink) Publish(snap *telemetry.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	if r.fail {
		return errors.New("renderer unavailable")
	}
	return nil
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}
