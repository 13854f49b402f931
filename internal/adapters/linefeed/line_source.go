package linefeed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ghalamif/AstraLink/internal/adapters/observability"
	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

// DefaultBaud matches the radio modem's factory serial rate.
const DefaultBaud = 9600

// Config selects where newline-delimited records come from: a TCP bridge in
// front of the radio modem, or the serial device the modem is attached to.
type Config struct {
	Addr        string        `yaml:"addr"`
	Path        string        `yaml:"path"`
	Baud        int           `yaml:"baud"`
	MaxLineSize int           `yaml:"max_line_size"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Baud <= 0 {
		c.Baud = DefaultBaud
	}
	if c.MaxLineSize <= 0 {
		c.MaxLineSize = 64 << 10
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Addr == "" && c.Path == "" {
		return errors.New("one of addr or path is required")
	}
	if c.Addr != "" && c.Path != "" {
		return errors.New("addr and path are mutually exclusive")
	}
	return nil
}

// Source emits one packet per non-blank line. Reaching EOF or losing the
// connection ends the feed.
type Source struct {
	cfg  Config
	obs  ports.Observability
	open func() (io.ReadCloser, error)
	now  func() time.Time

	mu      sync.Mutex
	rc      io.ReadCloser
	done    chan struct{}
	started bool
	wg      sync.WaitGroup
}

func NewSource(cfg Config, obs ports.Observability) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Source{cfg: cfg, obs: observability.OrDiscard(obs), now: time.Now}
	s.open = s.openConfigured
	return s, nil
}

// NewReaderSource reads records from r. If r is an io.Closer it is closed on Stop.
func NewReaderSource(r io.Reader, obs ports.Observability) *Source {
	cfg := Config{}
	cfg.ApplyDefaults()
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return &Source{
		cfg:  cfg,
		obs:  observability.OrDiscard(obs),
		now:  time.Now,
		open: func() (io.ReadCloser, error) { return rc, nil },
	}
}

func (s *Source) Name() string { return "lines" }

func (s *Source) openConfigured() (io.ReadCloser, error) {
	if s.cfg.Addr != "" {
		conn, err := net.DialTimeout("tcp", s.cfg.Addr, s.cfg.DialTimeout)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", s.cfg.Addr, err)
		}
		return conn, nil
	}
	mode := &serial.Mode{
		BaudRate: s.cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := openSerial(s.cfg.Path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s at %d baud: %w", s.cfg.Path, s.cfg.Baud, err)
	}
	return port, nil
}

var openSerial = func(path string, mode *serial.Mode) (io.ReadCloser, error) {
	return serial.Open(path, mode)
}

func (s *Source) Start(out chan<- *domain.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("line source already started")
	}

	rc, err := s.open()
	if err != nil {
		return err
	}
	s.rc = rc
	s.done = make(chan struct{})
	s.started = true

	s.wg.Add(1)
	go s.consume(rc, s.done, out)
	return nil
}

func (s *Source) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	rc := s.rc
	done := s.done
	s.started = false
	s.rc = nil
	s.mu.Unlock()

	close(done)
	if err := rc.Close(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, os.ErrClosed) {
		s.obs.LogInfo("feed_close", ports.Field{Key: "source", Value: s.Name()}, ports.Field{Key: "err", Value: err.Error()})
	}
	s.wg.Wait()
	return nil
}

func (s *Source) consume(r io.ReadCloser, done <-chan struct{}, out chan<- *domain.Packet) {
	defer s.wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), s.cfg.MaxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pkt := &domain.Packet{Raw: line, ReceivedAt: s.now()}
		select {
		case <-done:
			return
		case out <- pkt:
		}
	}

	select {
	case <-done:
		return
	default:
	}
	// Release the upstream as soon as it ends.
	_ = r.Close()
	if err := scanner.Err(); err != nil {
		s.obs.IncCounter("astra_transport_errors_total", 1)
		s.obs.LogError("feed_transport_error", err, ports.Field{Key: "source", Value: s.Name()})
		return
	}
	s.obs.LogInfo("feed_closed", ports.Field{Key: "source", Value: s.Name()})
}

var _ ports.FeedSource = (*Source)(nil)
