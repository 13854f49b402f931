package astralink

import (
	"github.com/prometheus/client_golang/prometheus"

	base "github.com/ghalamif/AstraLink/pkg/astralink"
)

// Re-exported errors for convenience.
var (
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
	ErrFeedNotStarted    = base.ErrFeedNotStarted
	ErrFeedClosed        = base.ErrFeedClosed
)

// Type aliases so consumers can import github.com/ghalamif/AstraLink directly.
type (
	Config              = base.Config
	Policy              = base.Policy
	FeedConfig          = base.FeedConfig
	WebSocketConfig     = base.WebSocketConfig
	OPCUAConfig         = base.OPCUAConfig
	OPCUANodeConfig     = base.OPCUANodeConfig
	LinesConfig         = base.LinesConfig
	SimConfig           = base.SimConfig
	WindowConfig        = base.WindowConfig
	MetricsConfig       = base.MetricsConfig
	Flow                = base.Flow
	StreamInOption      = base.StreamInOption
	StreamOutOption     = base.StreamOutOption
	GroundRuntime       = base.GroundRuntime
	GroundRuntimeOption = base.GroundRuntimeOption
	Sample              = base.Sample
	Packet              = base.Packet
	Snapshot            = base.Snapshot
	View                = base.View
	State               = base.State
	Summary             = base.Summary
	MissionState        = base.MissionState
	FlightStage         = base.FlightStage
	RecoveryStatus      = base.RecoveryStatus
	SnapshotHandler     = base.SnapshotHandler
	FeedSource          = base.FeedSource
	Decoder             = base.Decoder
	Sink                = base.Sink
	SampleQueue         = base.SampleQueue
	QueuedSample        = base.QueuedSample
	Observability       = base.Observability
	Field               = base.Field
	ExternalFeed        = base.ExternalFeed
)

const (
	FeedWebSocket = base.FeedWebSocket
	FeedOPCUA     = base.FeedOPCUA
	FeedLines     = base.FeedLines
	FeedSim       = base.FeedSim

	StagePreLaunch = base.StagePreLaunch
	StageAscent    = base.StageAscent
	StageDescent   = base.StageDescent
	StageApogee    = base.StageApogee

	RecoveryArmed    = base.RecoveryArmed
	RecoveryDeployed = base.RecoveryDeployed
	RecoverySafed    = base.RecoverySafed
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Flow builder helpers.
func Conf(path string) (*Flow, error) {
	return base.Conf(path)
}

func ConfFromConfig(cfg *Config) (*Flow, error) {
	return base.ConfFromConfig(cfg)
}

func StreamInFeed(src FeedSource) StreamInOption {
	return base.StreamInFeed(src)
}

func StreamInDecoder(dec Decoder) StreamInOption {
	return base.StreamInDecoder(dec)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSink(s Sink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn SnapshotHandler) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Ground runtime and options.
func NewGroundRuntime(cfg *Config, opts ...GroundRuntimeOption) (*GroundRuntime, error) {
	return base.NewGroundRuntime(cfg, opts...)
}

func WithFeedSource(src FeedSource) GroundRuntimeOption {
	return base.WithFeedSource(src)
}

func WithDecoder(dec Decoder) GroundRuntimeOption {
	return base.WithDecoder(dec)
}

func WithSink(s Sink) GroundRuntimeOption {
	return base.WithSink(s)
}

func WithSampleQueue(q SampleQueue) GroundRuntimeOption {
	return base.WithSampleQueue(q)
}

func WithObservability(obs Observability) GroundRuntimeOption {
	return base.WithObservability(obs)
}

func WithRegistry(reg *prometheus.Registry) GroundRuntimeOption {
	return base.WithRegistry(reg)
}

// Sink adapters.
func NewCallbackSink(name string, fn SnapshotHandler) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan *Snapshot, func()) {
	return base.NewChannelSink(name, buffer)
}

// External feed.
func NewExternalFeed(name string) *ExternalFeed {
	return base.NewExternalFeed(name)
}
