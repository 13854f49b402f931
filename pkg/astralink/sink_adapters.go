package astralink

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelSinkClosed is returned when a channel sink is published to after being closed.
var ErrChannelSinkClosed = errors.New("astralink: channel sink closed")

// SnapshotHandler is invoked with every snapshot published by the ingest loop.
type SnapshotHandler func(*Snapshot) error

// NewCallbackSink adapts a SnapshotHandler into a full Sink implementation so
// renderers can plug arbitrary functions without defining structs.
func NewCallbackSink(name string, fn SnapshotHandler) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes snapshots via a channel; it returns the sink, the
// read-only channel, and a close function that the caller should invoke
// during shutdown. Publish blocks while the channel is full, so the reader
// must keep up with the feed or the ingest loop stalls.
func NewChannelSink(name string, buffer int) (Sink, <-chan *Snapshot, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan *Snapshot, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   SnapshotHandler
}

func (s *callbackSink) Publish(snap *Snapshot) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if snap == nil {
		return nil
	}
	return s.fn(snap)
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan *Snapshot
	closed chan struct{}
	once   sync.Once
	// mu keeps close from racing a send on ch.
	mu sync.RWMutex
}

func (s *channelSink) Publish(snap *Snapshot) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	if snap == nil {
		return nil
	}

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- snap:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		close(s.ch)
		s.mu.Unlock()
	})
}
