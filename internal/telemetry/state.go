package telemetry

import (
	"sync"
	"sync/atomic"

	"github.com/ghalamif/AstraLink/internal/domain"
)

const (
	// DefaultHistorySize is how many samples back the charts reach.
	DefaultHistorySize = 100
	// DefaultPacketLogSize is how many raw packets the debug log keeps.
	DefaultPacketLogSize = 10
)

// Option customizes a State.
type Option func(*State)

// WithHistorySize overrides the history window capacity. Values below one are ignored.
func WithHistorySize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithPacketLogSize overrides the raw packet log capacity. Values below one are ignored.
func WithPacketLogSize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.logSize = n
		}
	}
}

// State owns the history window, the raw packet log and the tracked flight
// time. Ingest is the only mutation; every call publishes a new immutable
// Snapshot that readers load without locking.
type State struct {
	historySize int
	logSize     int

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewState returns an empty State with the default window sizes.
func NewState(opts ...Option) *State {
	s := &State{
		historySize: DefaultHistorySize,
		logSize:     DefaultPacketLogSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.current.Store(&Snapshot{})
	return s
}

// Ingest records one sample and its raw payload, then publishes and returns
// the resulting snapshot. It never fails; NaN and ±Inf fields are stored as
// zero so every snapshot stays encodable.
func (s *State) Ingest(sample domain.Sample, raw string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next := &Snapshot{
		history:    appendBounded(prev.history, sample.Finite(), s.historySize),
		packetLog:  prependBounded(prev.packetLog, raw, s.logSize),
		flightTime: numeric(sample.Time),
		ingested:   prev.ingested + 1,
	}
	s.current.Store(next)
	return next
}

// Snapshot returns the most recently published snapshot.
func (s *State) Snapshot() *Snapshot {
	return s.current.Load()
}
