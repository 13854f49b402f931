package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ghalamif/AstraLink/internal/adapters/observability"
	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Interval      time.Duration `yaml:"interval"`
	ThrustSeconds float64       `yaml:"thrust_seconds"`
	Seed          int64         `yaml:"seed"`
}

func (c *Config) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	if c.ThrustSeconds <= 0 {
		c.ThrustSeconds = 30
	}
}

// Source plays a simulated flight into the pipeline, one reading per tick.
type Source struct {
	cfg   Config
	obs   ports.Observability
	clock Clock

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

func NewSource(cfg Config, obs ports.Observability, clock Clock) *Source {
	cfg.ApplyDefaults()
	if clock == nil {
		clock = realClock{}
	}
	return &Source{cfg: cfg, obs: observability.OrDiscard(obs), clock: clock}
}

func (s *Source) Name() string { return "sim" }

func (s *Source) Start(out chan<- *domain.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("simulator already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.started = true

	gen := NewGenerator(s.cfg.ThrustSeconds, s.cfg.Seed, s.clock)
	s.obs.LogInfo("feed_connected", ports.Field{Key: "source", Value: s.Name()}, ports.Field{Key: "interval", Value: s.cfg.Interval.String()})

	s.wg.Add(1)
	go s.run(ctx, gen, out)
	return nil
}

func (s *Source) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.started = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	return nil
}

func (s *Source) run(ctx context.Context, gen *Generator, out chan<- *domain.Packet) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		raw, err := json.Marshal(gen.Next())
		if err != nil {
			s.obs.LogError("sim_encode_failed", err)
			continue
		}
		pkt := &domain.Packet{Raw: string(raw), ReceivedAt: s.clock.Now()}

		select {
		case <-ctx.Done():
			return
		case out <- pkt:
		}
	}
}

var _ ports.FeedSource = (*Source)(nil)
