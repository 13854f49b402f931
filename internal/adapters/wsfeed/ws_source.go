package wsfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/ghalamif/AstraLink/internal/adapters/observability"
	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

// Config describes the telemetry websocket endpoint.
type Config struct {
	URL         string        `yaml:"url"`
	ReadLimit   int64         `yaml:"read_limit"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = "ws://localhost:8000/ws/telemetry"
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 64 << 10
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	return nil
}

// Source reads one telemetry record per websocket message. A lost connection
// is logged and ends the feed; it is not redialled.
type Source struct {
	cfg Config
	obs ports.Observability
	now func() time.Time

	mu       sync.Mutex
	conn     *websocket.Conn
	cancel   context.CancelFunc
	started  bool
	stopping atomic.Bool
	wg       sync.WaitGroup
}

func NewSource(cfg Config, obs ports.Observability) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Source{
		cfg: cfg,
		obs: observability.OrDiscard(obs),
		now: time.Now,
	}, nil
}

func (s *Source) Name() string { return "websocket" }

func (s *Source) Start(out chan<- *domain.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("websocket source already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	dialCtx, dialCancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	conn, _, err := websocket.Dial(dialCtx, s.cfg.URL, nil)
	dialCancel()
	if err != nil {
		cancel()
		return fmt.Errorf("websocket dial %s: %w", s.cfg.URL, err)
	}
	conn.SetReadLimit(s.cfg.ReadLimit)

	s.conn = conn
	s.cancel = cancel
	s.started = true
	s.stopping.Store(false)

	s.obs.LogInfo("feed_connected", ports.Field{Key: "source", Value: s.Name()}, ports.Field{Key: "url", Value: s.cfg.URL})

	s.wg.Add(1)
	go s.consume(ctx, conn, out)
	return nil
}

// Stop closes the connection and waits for the reader to exit. Close
// handshake failures are logged only; the connection is released either way.
func (s *Source) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	cancel := s.cancel
	s.started = false
	s.conn = nil
	s.cancel = nil
	s.mu.Unlock()

	s.stopping.Store(true)
	if err := conn.Close(websocket.StatusNormalClosure, "ground station shutdown"); err != nil {
		s.obs.LogInfo("feed_close", ports.Field{Key: "source", Value: s.Name()}, ports.Field{Key: "err", Value: err.Error()})
	}
	cancel()
	s.wg.Wait()
	return nil
}

func (s *Source) consume(ctx context.Context, conn *websocket.Conn, out chan<- *domain.Packet) {
	defer s.wg.Done()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.handleReadError(err)
			if !s.stopping.Load() {
				_ = conn.CloseNow()
			}
			return
		}

		pkt := &domain.Packet{Raw: string(data), ReceivedAt: s.now()}
		select {
		case <-ctx.Done():
			return
		case out <- pkt:
		}
	}
}

func (s *Source) handleReadError(err error) {
	if s.stopping.Load() {
		return
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		s.obs.LogInfo("feed_closed", ports.Field{Key: "source", Value: s.Name()})
		return
	}
	s.obs.IncCounter("astra_transport_errors_total", 1)
	s.obs.LogError("feed_transport_error", err, ports.Field{Key: "source", Value: s.Name()})
}

var _ ports.FeedSource = (*Source)(nil)
