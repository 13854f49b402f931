package astralink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ghalamif/AstraLink/internal/domain"
)

var (
	// ErrFeedNotStarted is returned by ExternalFeed.Publish before the runtime starts the feed.
	ErrFeedNotStarted = errors.New("astralink: feed not started")
	// ErrFeedClosed is returned by ExternalFeed.Publish after the feed is stopped.
	ErrFeedClosed = errors.New("astralink: feed closed")
)

// ExternalFeed is a FeedSource driven by the embedding application: every
// Publish call hands one raw payload to the pipeline, in call order.
type ExternalFeed struct {
	name string
	now  func() time.Time

	mu       sync.RWMutex
	out      chan<- *domain.Packet
	closed   chan struct{}
	stopOnce sync.Once
}

// NewExternalFeed returns an ExternalFeed; plug it in with WithFeedSource.
func NewExternalFeed(name string) *ExternalFeed {
	if name == "" {
		name = "external"
	}
	return &ExternalFeed{
		name:   name,
		now:    time.Now,
		closed: make(chan struct{}),
	}
}

func (f *ExternalFeed) Name() string { return f.name }

func (f *ExternalFeed) Start(out chan<- *domain.Packet) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	select {
	case <-f.closed:
		return ErrFeedClosed
	default:
	}
	if f.out != nil {
		return fmt.Errorf("feed %q already started", f.name)
	}
	f.out = out
	return nil
}

// Publish blocks until the pipeline accepts raw, the feed is stopped, or ctx
// is done.
func (f *ExternalFeed) Publish(ctx context.Context, raw []byte) error {
	f.mu.RLock()
	out := f.out
	f.mu.RUnlock()

	if out == nil {
		return ErrFeedNotStarted
	}
	select {
	case <-f.closed:
		return ErrFeedClosed
	default:
	}

	pkt := &domain.Packet{Raw: string(raw), ReceivedAt: f.now()}
	select {
	case <-f.closed:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	case out <- pkt:
		return nil
	}
}

func (f *ExternalFeed) Stop() error {
	f.stopOnce.Do(func() {
		close(f.closed)
	})
	return nil
}

var _ FeedSource = (*ExternalFeed)(nil)
