package astralink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ghalamif/AstraLink/internal/adapters/decode"
	"github.com/ghalamif/AstraLink/internal/adapters/linefeed"
	"github.com/ghalamif/AstraLink/internal/adapters/observability"
	"github.com/ghalamif/AstraLink/internal/adapters/opcua"
	"github.com/ghalamif/AstraLink/internal/adapters/queue"
	"github.com/ghalamif/AstraLink/internal/adapters/simulator"
	"github.com/ghalamif/AstraLink/internal/adapters/wsfeed"
	"github.com/ghalamif/AstraLink/internal/app/pipeline"
	"github.com/ghalamif/AstraLink/internal/ports"
	"github.com/ghalamif/AstraLink/internal/telemetry"
)

// GroundRuntimeOption customizes the dependencies used by GroundRuntime.
type GroundRuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	source        FeedSource
	decoder       Decoder
	sinks         []Sink
	queue         SampleQueue
	observability Observability
	registry      *prometheus.Registry
}

// WithFeedSource injects a custom feed (serial bridge, replay file, test harness, etc.).
func WithFeedSource(src FeedSource) GroundRuntimeOption {
	return func(o *runtimeOverrides) {
		o.source = src
	}
}

// WithDecoder replaces the lenient JSON decoder.
func WithDecoder(dec Decoder) GroundRuntimeOption {
	return func(o *runtimeOverrides) {
		o.decoder = dec
	}
}

// WithSink adds a sink that receives every published snapshot. May be repeated.
func WithSink(s Sink) GroundRuntimeOption {
	return func(o *runtimeOverrides) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithSampleQueue injects a custom queue implementation.
func WithSampleQueue(q SampleQueue) GroundRuntimeOption {
	return func(o *runtimeOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) GroundRuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithRegistry registers the default Prometheus collectors on reg instead of
// the process-wide registerer and serves /metrics from it.
func WithRegistry(reg *prometheus.Registry) GroundRuntimeOption {
	return func(o *runtimeOverrides) {
		o.registry = reg
	}
}

// GroundRuntime wires the feed → decode → queue → telemetry state pipeline
// and serves the read side over HTTP.
type GroundRuntime struct {
	cfg     *Config
	policy  ports.Policy
	obs     ports.Observability
	queue   ports.SampleQueue
	source  ports.FeedSource
	decoder ports.Decoder
	sinks   []ports.Sink
	state   *telemetry.State
	metrics http.Handler

	mu           sync.Mutex
	started      bool
	cancel       context.CancelFunc
	metricsSrv   *http.Server
	metricsAddr  string
	gaugeStopCh  chan struct{}
	ingestDoneCh chan struct{}
}

// NewGroundRuntime bootstraps the default adapters (feed from cfg.Feed.Kind,
// JSON decoder, in-memory queue, Prometheus observability). Options override
// any of them.
func NewGroundRuntime(cfg *Config, opts ...GroundRuntimeOption) (*GroundRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		var reg prometheus.Registerer
		if overrides.registry != nil {
			reg = overrides.registry
		}
		obs = observability.NewPromObs(nil, reg)
	}

	metrics := promhttp.Handler()
	if overrides.registry != nil {
		metrics = promhttp.HandlerFor(overrides.registry, promhttp.HandlerOpts{})
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	dec := overrides.decoder
	if dec == nil {
		dec = decode.NewJSONDecoder()
	}

	src := overrides.source
	if src == nil {
		var err error
		src, err = newFeedSource(cfg.Feed, obs)
		if err != nil {
			return nil, err
		}
	}

	state := telemetry.NewState(
		telemetry.WithHistorySize(cfg.Window.HistorySize),
		telemetry.WithPacketLogSize(cfg.Window.PacketLogSize),
	)

	return &GroundRuntime{
		cfg:     cfg,
		policy:  cfg.Policy,
		obs:     obs,
		queue:   q,
		source:  src,
		decoder: dec,
		sinks:   overrides.sinks,
		state:   state,
		metrics: metrics,
	}, nil
}

func newFeedSource(cfg FeedConfig, obs ports.Observability) (ports.FeedSource, error) {
	switch cfg.Kind {
	case FeedWebSocket:
		src, err := wsfeed.NewSource(cfg.WebSocket, obs)
		if err != nil {
			return nil, fmt.Errorf("websocket config: %w", err)
		}
		return src, nil
	case FeedOPCUA:
		src, err := opcua.NewSource(cfg.OPCUA, obs)
		if err != nil {
			return nil, fmt.Errorf("opcua config: %w", err)
		}
		return src, nil
	case FeedLines:
		src, err := linefeed.NewSource(cfg.Lines, obs)
		if err != nil {
			return nil, fmt.Errorf("lines config: %w", err)
		}
		return src, nil
	case FeedSim:
		return simulator.NewSource(cfg.Sim, obs, nil), nil
	default:
		return nil, fmt.Errorf("unknown feed kind %q", cfg.Kind)
	}
}

// State exposes the read side of the telemetry state.
func (g *GroundRuntime) State() *State { return g.state }

// Snapshot returns the most recently published snapshot.
func (g *GroundRuntime) Snapshot() *Snapshot { return g.state.Snapshot() }

// MetricsAddr reports the address the HTTP server is listening on, once started.
func (g *GroundRuntime) MetricsAddr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metricsAddr
}

// Start opens the feed, launches the ingest loop and the HTTP server.
// It returns immediately; call Run to block on a context instead.
func (g *GroundRuntime) Start() error {
	if g == nil {
		return fmt.Errorf("ground runtime is nil")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return fmt.Errorf("ground runtime already started")
	}

	if err := g.startHTTP(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := pipeline.RunFeedPipeline(ctx, g.source, g.decoder, g.queue, g.policy, g.obs); err != nil {
		cancel()
		g.stopHTTP(context.Background())
		return err
	}

	g.cancel = cancel
	g.ingestDoneCh = make(chan struct{})
	go func() {
		defer close(g.ingestDoneCh)
		pipeline.RunIngestPipeline(ctx, g.queue, g.state, g.sinks, g.policy, g.obs)
	}()

	g.gaugeStopCh = make(chan struct{})
	go g.recordQueueGauge(g.gaugeStopCh, time.Second)

	g.started = true
	g.obs.LogInfo("ground_runtime_started",
		ports.Field{Key: "feed", Value: g.source.Name()},
		ports.Field{Key: "http", Value: g.metricsAddr})
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (g *GroundRuntime) Run(ctx context.Context) error {
	if err := g.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(shutdownCtx)
}

// Shutdown closes the feed first, then drains the ingest loop and stops the
// HTTP server. Errors from every step are joined.
func (g *GroundRuntime) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return nil
	}
	g.started = false

	var errs []error

	if err := g.source.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop %s feed: %w", g.source.Name(), err))
	}

	g.cancel()
	select {
	case <-g.ingestDoneCh:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	close(g.gaugeStopCh)

	if err := g.stopHTTP(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (g *GroundRuntime) startHTTP() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", g.metrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/snapshot", snapshotHandler(g.state, g.obs))

	ln, err := net.Listen("tcp", g.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", g.cfg.Metrics.Addr, err)
	}
	g.metricsAddr = ln.Addr().String()
	g.metricsSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := g.metricsSrv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.obs.LogError("http_server_exited", err)
		}
	}()
	return nil
}

func (g *GroundRuntime) stopHTTP(ctx context.Context) error {
	if g.metricsSrv == nil {
		return nil
	}
	err := g.metricsSrv.Shutdown(ctx)
	g.metricsSrv = nil
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *GroundRuntime) recordQueueGauge(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.obs.SetGauge("astra_queue_length", float64(g.queue.Len()))
		}
	}
}
