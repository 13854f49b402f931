package astralink

import (
	"github.com/ghalamif/AstraLink/internal/adapters/linefeed"
	"github.com/ghalamif/AstraLink/internal/adapters/opcua"
	"github.com/ghalamif/AstraLink/internal/adapters/simulator"
	"github.com/ghalamif/AstraLink/internal/adapters/wsfeed"
	"github.com/ghalamif/AstraLink/internal/app/config"
	"github.com/ghalamif/AstraLink/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls queue thresholds between the feed and the ingest loop.
	Policy = ports.Policy
	// FeedConfig selects and configures the telemetry feed.
	FeedConfig = config.FeedConfig
	// WebSocketConfig configures the websocket feed.
	WebSocketConfig = wsfeed.Config
	// OPCUAConfig holds connection + node details.
	OPCUAConfig = opcua.Config
	// OPCUANodeConfig maps a monitored node onto a record field.
	OPCUANodeConfig = opcua.NodeConfig
	// LinesConfig configures the newline-delimited feed.
	LinesConfig = linefeed.Config
	// SimConfig configures the built-in flight simulator.
	SimConfig = simulator.Config
	// WindowConfig sizes the history window and raw packet log.
	WindowConfig = config.WindowConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
)

// Feed kinds accepted in FeedConfig.Kind.
const (
	FeedWebSocket = config.FeedWebSocket
	FeedOPCUA     = config.FeedOPCUA
	FeedLines     = config.FeedLines
	FeedSim       = config.FeedSim
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
