package astralink

import (
	"context"
	"fmt"
)

// Flow reads as the station's data path: Conf loads where telemetry comes
// from, StreamIN adjusts the feed side, StreamOUT attaches renderers and
// yields a GroundRuntime.
type Flow struct {
	cfg  *Config
	opts []GroundRuntimeOption
}

// StreamInOption adjusts the feed side: source, decoder, observability.
type StreamInOption func(*Flow)

// StreamOutOption adjusts the renderer side: sinks, observability.
type StreamOutOption func(*Flow)

// Conf loads a YAML config and starts a Flow from it.
func Conf(path string) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg)
}

// ConfFromConfig starts a Flow from a Config built in code.
func ConfFromConfig(cfg *Config) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &Flow{cfg: cfg}, nil
}

// Config exposes the loaded configuration for last-minute edits, such as
// switching Feed.Kind from a command-line flag.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f != nil {
		applyTo(f, opts)
	}
	return f
}

// StreamOUT applies the renderer-side options and builds the runtime.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*GroundRuntime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	applyTo(f, opts)
	return NewGroundRuntime(f.cfg, f.opts...)
}

// Run builds the runtime and blocks in GroundRuntime.Run until ctx is done.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// StreamInFeed replaces the feed named by feed.kind.
func StreamInFeed(src FeedSource) StreamInOption {
	return withRuntimeOption(src != nil, func() GroundRuntimeOption { return WithFeedSource(src) })
}

// StreamInDecoder replaces the lenient JSON decoder.
func StreamInDecoder(dec Decoder) StreamInOption {
	return withRuntimeOption(dec != nil, func() GroundRuntimeOption { return WithDecoder(dec) })
}

func StreamInObservability(obs Observability) StreamInOption {
	return withRuntimeOption(obs != nil, func() GroundRuntimeOption { return WithObservability(obs) })
}

// StreamOutSink attaches a renderer sink. Sinks see snapshots in the order given.
func StreamOutSink(s Sink) StreamOutOption {
	return withRuntimeOption(s != nil, func() GroundRuntimeOption { return WithSink(s) })
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return withRuntimeOption(obs != nil, func() GroundRuntimeOption { return WithObservability(obs) })
}

// StreamOutCallback attaches fn as a renderer through NewCallbackSink.
func StreamOutCallback(name string, fn SnapshotHandler) StreamOutOption {
	return withRuntimeOption(true, func() GroundRuntimeOption { return WithSink(NewCallbackSink(name, fn)) })
}

// withRuntimeOption records a GroundRuntimeOption on the flow when ok holds.
func withRuntimeOption(ok bool, build func() GroundRuntimeOption) func(*Flow) {
	return func(f *Flow) {
		if f != nil && ok {
			f.opts = append(f.opts, build())
		}
	}
}

func applyTo[O ~func(*Flow)](f *Flow, opts []O) {
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
}
