package astralink

import (
	"sync"

	"github.com/ghalamif/AstraLink/internal/domain"
)

type stubFeed struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (s *stubFeed) Start(out chan<- *Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *stubFeed) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *stubFeed) Name() string { return "stub" }

type stubDecoder struct{}

func (stubDecoder) Decode(raw []byte) (domain.Sample, error) { return domain.Sample{}, nil }

type stubSink struct{}

func (s *stubSink) Publish(*Snapshot) error { return nil }
func (s *stubSink) Name() string            { return "stub" }

type stubQueue struct{}

func (s *stubQueue) Enqueue(QueuedSample) bool           { return true }
func (s *stubQueue) DequeueBatch(max int) []QueuedSample { return nil }
func (s *stubQueue) Len() int                            { return 0 }

type stubObservability struct{}

func (s *stubObservability) LogInfo(string, ...Field)            {}
func (s *stubObservability) LogError(string, error, ...Field)    {}
func (s *stubObservability) LogCritical(string, error, ...Field) {}
func (s *stubObservability) IncCounter(string, float64)          {}
func (s *stubObservability) ObserveLatency(string, float64)      {}
func (s *stubObservability) SetGauge(string, float64)            {}
