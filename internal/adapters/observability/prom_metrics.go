package observability

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/AstraLink/internal/ports"
)

type PromObs struct {
	logger   *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the ground-station collectors on reg, or the default
// registerer when nil, and logs through logger, or slog.Default when nil.
// Collectors already registered on reg by an earlier PromObs are reused, so
// several runtimes in one process share one set of series.
func NewPromObs(logger *slog.Logger, reg prometheus.Registerer) *PromObs {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astra_samples_ingested_total",
		Help: "Total samples applied to the telemetry window.",
	})
	decodeErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astra_decode_errors_total",
		Help: "Feed messages dropped because they did not decode into a record.",
	})
	transportErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astra_transport_errors_total",
		Help: "Feed connections lost to transport errors.",
	})
	queueDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astra_queue_dropped_total",
		Help: "Samples lost due to queue backpressure policies.",
	})
	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astra_queue_length",
		Help: "Current number of decoded samples waiting for the ingest loop.",
	})
	historyGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astra_history_length",
		Help: "Samples currently held in the history window.",
	})
	altitudeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astra_current_altitude_meters",
		Help: "Altitude of the newest sample.",
	})
	velocityGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astra_current_velocity_mps",
		Help: "Velocity of the newest sample.",
	})
	flightTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astra_flight_time_seconds",
		Help: "Time field of the last ingested sample.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "astra_ingest_latency_seconds",
		Help:    "Delay from packet arrival to snapshot publication.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	return &PromObs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			"astra_samples_ingested_total": register(reg, ingested),
			"astra_decode_errors_total":    register(reg, decodeErrors),
			"astra_transport_errors_total": register(reg, transportErrors),
			"astra_queue_dropped_total":    register(reg, queueDrops),
		},
		gauges: map[string]prometheus.Gauge{
			"astra_queue_length":            register(reg, queueGauge),
			"astra_history_length":          register(reg, historyGauge),
			"astra_current_altitude_meters": register(reg, altitudeGauge),
			"astra_current_velocity_mps":    register(reg, velocityGauge),
			"astra_flight_time_seconds":     register(reg, flightTimeGauge),
		},
		histos: map[string]prometheus.Observer{
			"astra_ingest_latency_seconds": register(reg, latency),
		},
	}
}

// register adds c to reg and returns the collector to record into: c itself,
// or the identical collector an earlier call already registered. Any other
// registration error is a programming error and panics, as MustRegister does.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		p.logger.Error(msg, append(attrs(fields), slog.Any("err", err))...)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		p.logger.Error(msg, append(attrs(fields), slog.Any("err", err), slog.Bool("critical", true))...)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
