package opcua

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"
	jsoniter "github.com/json-iterator/go"

	"github.com/ghalamif/AstraLink/internal/adapters/observability"
	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config captures the runtime details required to open an OPC UA session.
type Config struct {
	Endpoint         string        `yaml:"endpoint"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	SecurityMode     string        `yaml:"security_mode"`
	SecurityPolicy   string        `yaml:"security_policy"`
	ApplicationName  string        `yaml:"application_name"`
	PublishInterval  time.Duration `yaml:"publish_interval"`
	SamplingInterval time.Duration `yaml:"sampling_interval"`
	Nodes            []NodeConfig  `yaml:"nodes"`
}

// NodeConfig maps a monitored node onto a telemetry record field.
type NodeConfig struct {
	NodeID string `yaml:"node_id"`
	Field  string `yaml:"field"`
}

func (c *Config) ApplyDefaults() {
	if c.SecurityMode == "" {
		c.SecurityMode = "None"
	}
	if c.SecurityPolicy == "" {
		c.SecurityPolicy = "None"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "AstraLink Ground Station"
	}
	if c.PublishInterval <= 0 {
		c.PublishInterval = 250 * time.Millisecond
	}
	if c.SamplingInterval < 0 {
		c.SamplingInterval = 0
	}
	for i := range c.Nodes {
		if c.Nodes[i].Field == "" {
			c.Nodes[i].Field = c.Nodes[i].NodeID
		}
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if len(c.Nodes) == 0 {
		return errors.New("at least one node must be configured")
	}
	seen := make(map[string]struct{}, len(c.Nodes))
	for _, n := range c.Nodes {
		if n.NodeID == "" {
			return errors.New("node_id is required")
		}
		if _, dup := seen[n.Field]; dup {
			return fmt.Errorf("field %q is mapped by more than one node", n.Field)
		}
		seen[n.Field] = struct{}{}
	}
	return nil
}

// Source subscribes to the flight computer's OPC UA address space and turns
// every data-change notification into one telemetry record holding the
// latest value of each mapped node.
type Source struct {
	cfg       Config
	obs       ports.Observability
	client    *opcua.Client
	sub       *opcua.Subscription
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	handleMap map[uint32]NodeConfig
	rec       *record
	mu        sync.Mutex
	started   bool
}

func NewSource(cfg Config, obs ports.Observability) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Source{
		cfg: cfg,
		obs: observability.OrDiscard(obs),
	}, nil
}

func (c *Source) Name() string { return "opcua" }

func (c *Source) Start(out chan<- *domain.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("opcua source already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	client, err := c.dial(ctx)
	if err != nil {
		cancel()
		return err
	}

	// Each notification carries at most one item per node.
	notifyCh := make(chan *opcua.PublishNotificationData, len(c.cfg.Nodes)*4)
	sub, err := client.Subscribe(ctx, &opcua.SubscriptionParameters{Interval: c.cfg.PublishInterval}, notifyCh)
	if err != nil {
		c.release(ctx, cancel, nil, client)
		return fmt.Errorf("opcua subscribe: %w", err)
	}

	fields, err := c.monitor(ctx, sub)
	if err != nil {
		c.release(ctx, cancel, sub, client)
		return err
	}

	c.client = client
	c.sub = sub
	c.cancel = cancel
	c.handleMap = fields
	c.rec = newRecord(time.Now())
	c.started = true

	c.obs.LogInfo("feed_connected", ports.Field{Key: "source", Value: c.Name()}, ports.Field{Key: "endpoint", Value: c.cfg.Endpoint})

	c.wg.Add(1)
	go c.consume(ctx, notifyCh, out)
	return nil
}

func (c *Source) dial(ctx context.Context) (*opcua.Client, error) {
	client, err := opcua.NewClient(c.cfg.Endpoint, c.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("opcua new client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("opcua connect %s: %w", c.cfg.Endpoint, err)
	}
	return client, nil
}

// monitor registers every configured node on sub and returns the client
// handle to node mapping used to decode notifications.
func (c *Source) monitor(ctx context.Context, sub *opcua.Subscription) (map[uint32]NodeConfig, error) {
	fields := make(map[uint32]NodeConfig, len(c.cfg.Nodes))
	for i, node := range c.cfg.Nodes {
		nodeID, err := ua.ParseNodeID(node.NodeID)
		if err != nil {
			return nil, fmt.Errorf("parse node id %q: %w", node.NodeID, err)
		}
		handle := uint32(i + 1)
		req := opcua.NewMonitoredItemCreateRequestWithDefaults(nodeID, ua.AttributeIDValue, handle)
		if c.cfg.SamplingInterval > 0 {
			req.RequestedParameters.SamplingInterval = float64(c.cfg.SamplingInterval / time.Millisecond)
		}
		res, err := sub.Monitor(ctx, ua.TimestampsToReturnBoth, req)
		switch {
		case err != nil:
			return nil, fmt.Errorf("monitor node %q: %w", node.NodeID, err)
		case len(res.Results) == 0:
			return nil, fmt.Errorf("monitor node %q: empty result", node.NodeID)
		case res.Results[0].StatusCode != ua.StatusOK:
			return nil, fmt.Errorf("monitor node %q: %s", node.NodeID, res.Results[0].StatusCode)
		}
		fields[handle] = node
	}
	return fields, nil
}

// Stop cancels the subscription and closes the session. Errors from the
// server during teardown are logged; the session is released regardless.
func (c *Source) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	cancel := c.cancel
	sub := c.sub
	client := c.client
	c.started = false
	c.cancel = nil
	c.sub = nil
	c.client = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	var err error
	if sub != nil {
		if e := sub.Cancel(ctx); e != nil && !errors.Is(e, context.Canceled) {
			err = errors.Join(err, e)
		}
	}
	if client != nil {
		if e := client.Close(ctx); e != nil && !errors.Is(e, context.Canceled) {
			err = errors.Join(err, e)
		}
	}

	c.wg.Wait()
	if err != nil {
		c.obs.LogInfo("feed_close", ports.Field{Key: "source", Value: c.Name()}, ports.Field{Key: "err", Value: err.Error()})
	}
	return nil
}

func (c *Source) consume(ctx context.Context, ch <-chan *opcua.PublishNotificationData, out chan<- *domain.Packet) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case notif := <-ch:
			if notif == nil {
				continue
			}
			if notif.Error != nil {
				if ctx.Err() != nil {
					return
				}
				c.obs.IncCounter("astra_transport_errors_total", 1)
				c.obs.LogError("feed_transport_error", notif.Error, ports.Field{Key: "source", Value: c.Name()})
				return
			}
			c.processNotification(ctx, notif.Value, out)
		}
	}
}

func (c *Source) processNotification(ctx context.Context, val interface{}, out chan<- *domain.Packet) {
	data, ok := val.(*ua.DataChangeNotification)
	if !ok {
		return
	}

	var changed bool
	for _, item := range data.MonitoredItems {
		nodeCfg, ok := c.handleMap[item.ClientHandle]
		if !ok || item.Value == nil {
			continue
		}
		fv, ok := variantToFloat(item.Value.Value)
		if !ok {
			c.obs.LogInfo("opcua_unsupported_value",
				ports.Field{Key: "node_id", Value: nodeCfg.NodeID},
				ports.Field{Key: "type", Value: fmt.Sprintf("%T", item.Value.Value)})
			continue
		}
		c.rec.set(nodeCfg.Field, fv)
		changed = true
	}
	if !changed {
		return
	}

	raw, err := c.rec.encode(time.Now())
	if err != nil {
		c.obs.LogError("opcua_encode_failed", err)
		return
	}

	select {
	case <-ctx.Done():
	case out <- &domain.Packet{Raw: string(raw), ReceivedAt: time.Now()}:
	}
}

func (c *Source) clientOptions() []opcua.Option {
	auth := opcua.AuthAnonymous()
	if c.cfg.Username != "" {
		auth = opcua.AuthUsername(c.cfg.Username, c.cfg.Password)
	}
	return []opcua.Option{
		opcua.SecurityModeString(normalizeSecurityMode(c.cfg.SecurityMode)),
		opcua.SecurityPolicy(normalizeSecurityPolicy(c.cfg.SecurityPolicy)),
		opcua.ApplicationName(c.cfg.ApplicationName),
		opcua.AutoReconnect(false),
		auth,
	}
}

func (c *Source) release(ctx context.Context, cancel context.CancelFunc, sub *opcua.Subscription, client *opcua.Client) {
	if sub != nil {
		_ = sub.Cancel(ctx)
	}
	if client != nil {
		_ = client.Close(ctx)
	}
	cancel()
}

func variantToFloat(v *ua.Variant) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.Value().(type) {
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case int8:
		return float64(val), true
	case uint8:
		return float64(val), true
	case int16:
		return float64(val), true
	case uint16:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

func normalizeSecurityMode(mode string) string {
	switch strings.ToLower(mode) {
	case "sign":
		return "Sign"
	case "signandencrypt", "signencrypt", "sign_and_encrypt", "sign+encrypt":
		return "SignAndEncrypt"
	default:
		return "None"
	}
}

func normalizeSecurityPolicy(policy string) string {
	if policy == "" {
		return "None"
	}
	return policy
}

// record holds the latest value seen for each mapped field.
type record struct {
	started time.Time
	values  map[string]float64
}

func newRecord(started time.Time) *record {
	return &record{started: started, values: make(map[string]float64)}
}

// set stores v for field. NaN and ±Inf are stored as 0 so one bad reading
// cannot make every later record unencodable.
func (r *record) set(field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	r.values[field] = v
}

// encode serializes the record with keys in sorted order. When no node feeds
// the time field, elapsed seconds since the subscription started stand in.
func (r *record) encode(now time.Time) ([]byte, error) {
	out := make(map[string]float64, len(r.values)+1)
	for k, v := range r.values {
		out[k] = v
	}
	if _, ok := out["time"]; !ok {
		out["time"] = now.Sub(r.started).Seconds()
	}
	return json.Marshal(out)
}

var _ ports.FeedSource = (*Source)(nil)
