package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/AstraLink/internal/adapters/linefeed"
	"github.com/ghalamif/AstraLink/internal/adapters/opcua"
	"github.com/ghalamif/AstraLink/internal/adapters/simulator"
	"github.com/ghalamif/AstraLink/internal/adapters/wsfeed"
	"github.com/ghalamif/AstraLink/internal/ports"
)

// Feed kinds understood by FeedConfig.Kind.
const (
	FeedWebSocket = "websocket"
	FeedOPCUA     = "opcua"
	FeedLines     = "lines"
	FeedSim       = "sim"
)

type Config struct {
	Policy  ports.Policy  `yaml:"policy"`
	Feed    FeedConfig    `yaml:"feed"`
	Window  WindowConfig  `yaml:"window"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type FeedConfig struct {
	Kind      string           `yaml:"kind"`
	WebSocket wsfeed.Config    `yaml:"websocket"`
	OPCUA     opcua.Config     `yaml:"opcua"`
	Lines     linefeed.Config  `yaml:"lines"`
	Sim       simulator.Config `yaml:"sim"`
}

type WindowConfig struct {
	HistorySize   int `yaml:"history_size"`
	PacketLogSize int `yaml:"packet_log_size"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 1024
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 64
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Feed.Kind == "" {
		c.Feed.Kind = FeedWebSocket
	}
	if c.Window.HistorySize == 0 {
		c.Window.HistorySize = 100
	}
	if c.Window.PacketLogSize == 0 {
		c.Window.PacketLogSize = 10
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}

	switch c.Feed.Kind {
	case FeedWebSocket:
		c.Feed.WebSocket.ApplyDefaults()
	case FeedOPCUA:
		c.Feed.OPCUA.ApplyDefaults()
	case FeedLines:
		c.Feed.Lines.ApplyDefaults()
	case FeedSim:
		c.Feed.Sim.ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	switch c.Policy.OnQueueFull {
	case "block", "drop":
	default:
		return fmt.Errorf("policy.on_queue_full must be block or drop, got %q", c.Policy.OnQueueFull)
	}
	if c.Policy.MaxQueueLen <= 0 {
		return fmt.Errorf("policy.max_queue_len must be > 0")
	}
	if c.Window.HistorySize <= 0 || c.Window.PacketLogSize <= 0 {
		return fmt.Errorf("window sizes must be > 0")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}

	switch c.Feed.Kind {
	case FeedWebSocket:
		if err := c.Feed.WebSocket.Validate(); err != nil {
			return fmt.Errorf("websocket config: %w", err)
		}
	case FeedOPCUA:
		if err := c.Feed.OPCUA.Validate(); err != nil {
			return fmt.Errorf("opcua config: %w", err)
		}
	case FeedLines:
		if err := c.Feed.Lines.Validate(); err != nil {
			return fmt.Errorf("lines config: %w", err)
		}
	case FeedSim:
	default:
		return fmt.Errorf("feed.kind %q is not one of websocket, opcua, lines, sim", c.Feed.Kind)
	}
	return nil
}
