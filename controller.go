package growbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.jetify.com/typeid"

	"github.com/verdantlabs/growbox/dsl"
	"github.com/verdantlabs/growbox/script"
)

// NewNodeID returns a new identifier for a controller run.
func NewNodeID() string {
	id, err := typeid.WithPrefix("node")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// TelemetryPublisher receives snapshots and relay states after each tick.
type TelemetryPublisher interface {
	PublishSnapshot(snap SensorSnapshot) error
	PublishRelays(values []RelayValue, states []bool) error
}

// ControllerOptions configures a new controller.
type ControllerOptions struct {
	Config         *Config
	Source         SnapshotSource
	Store          RuleStore
	Driver         OutputDriver
	Logger         *slog.Logger
	Telemetry      TelemetryPublisher
	Metrics        *Metrics
	ScriptCompiler script.Compiler
	NodeID         string
}

// Controller owns the rule set and drives the relay bank from periodic
// sensor snapshots. Rules and labels survive restarts through the
// configured RuleStore.
type Controller struct {
	config    *Config
	source    SnapshotSource
	store     RuleStore
	bank      *RelayBank
	computed  *ComputedSensorSet
	telemetry TelemetryPublisher
	metrics   *Metrics
	logger    *slog.Logger

	nodeID    string
	startedAt time.Time

	mutex     sync.RWMutex
	rules     []string
	tickCount int64
	lastSnap  SensorSnapshot
}

// NewController loads persisted rules and labels, compiles the
// configured computed sensors, and returns a controller ready to run.
func NewController(ctx context.Context, opts ControllerOptions) (*Controller, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Store == nil {
		opts.Store = NewNullRuleStore()
	}
	if opts.Driver == nil {
		opts.Driver = NewLogOutputDriver(opts.Logger)
	}
	if opts.ScriptCompiler == nil {
		opts.ScriptCompiler = script.NewRisorEngine(script.SensorGlobals())
	}
	if opts.NodeID == "" {
		opts.NodeID = NewNodeID()
	}

	bank := NewRelayBank(opts.Config.RelayCount, opts.Driver)
	bank.SetLabels(opts.Config.RelayLabels)

	rules, err := opts.Store.LoadRules(ctx, opts.Config.RelayCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	labels, err := opts.Store.LoadLabels(ctx, opts.Config.RelayCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	bank.SetLabels(labels)

	computed, err := CompileComputedSensors(ctx, opts.ScriptCompiler, opts.Config.Computed, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Controller{
		config:    opts.Config,
		source:    opts.Source,
		store:     opts.Store,
		bank:      bank,
		computed:  computed,
		telemetry: opts.Telemetry,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		nodeID:    opts.NodeID,
		startedAt: time.Now(),
		rules:     rules,
	}, nil
}

// NodeID returns the identifier minted for this controller run.
func (c *Controller) NodeID() string { return c.nodeID }

// Bank returns the relay bank.
func (c *Controller) Bank() *RelayBank { return c.bank }

// Rules returns a copy of the current rule set.
func (c *Controller) Rules() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]string, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule returns the rule for relay i.
func (c *Controller) Rule(i int) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if i < 0 || i >= len(c.rules) {
		return "", NewRelayNotFoundError(i)
	}
	return c.rules[i], nil
}

// SetRule replaces the rule for relay i, persists the full set, and
// re-evaluates immediately so the relay reacts without waiting for the
// next tick. The text is stored as given; a rule that fails to parse
// is skipped during evaluation rather than rejected here.
func (c *Controller) SetRule(ctx context.Context, i int, rule string) error {
	c.mutex.Lock()
	if i < 0 || i >= len(c.rules) {
		c.mutex.Unlock()
		return NewRelayNotFoundError(i)
	}
	if rule == "" {
		rule = DefaultRule
	}
	c.rules[i] = rule
	rules := make([]string, len(c.rules))
	copy(rules, c.rules)
	c.mutex.Unlock()

	if err := c.store.SaveRules(ctx, rules); err != nil {
		return fmt.Errorf("failed to persist rules: %w", err)
	}
	c.Tick(ctx)
	return nil
}

// SetLabel renames relay i and persists the label set.
func (c *Controller) SetLabel(ctx context.Context, i int, label string) error {
	if err := c.bank.SetLabel(i, label); err != nil {
		return err
	}
	if err := c.store.SaveLabels(ctx, c.bank.Labels()); err != nil {
		return fmt.Errorf("failed to persist labels: %w", err)
	}
	return nil
}

// ForceRelay writes the operator override digit of relay i and pushes
// the resolved states to the output driver.
func (c *Controller) ForceRelay(i, force int) error {
	if err := c.bank.SetForce(i, force); err != nil {
		return err
	}
	return c.bank.Refresh()
}

// Snapshot returns the readings captured on the most recent tick.
func (c *Controller) Snapshot() SensorSnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastSnap
}

// GlobalInfo describes the running controller.
type GlobalInfo struct {
	Name          string    `json:"name"`
	NodeID        string    `json:"node_id"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	TickCount     int64     `json:"tick_count"`
	RelayCount    int       `json:"relay_count"`
}

func (c *Controller) GlobalInfo() GlobalInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return GlobalInfo{
		Name:          c.config.Name,
		NodeID:        c.nodeID,
		StartedAt:     c.startedAt,
		UptimeSeconds: int64(time.Since(c.startedAt).Seconds()),
		TickCount:     c.tickCount,
		RelayCount:    c.bank.Count(),
	}
}

// buildEnv assembles the evaluation environment for one tick. The
// snapshot is captured once so every rule in the set sees the same
// readings.
func (c *Controller) buildEnv(snap SensorSnapshot) *dsl.Env {
	snapshotFn := func() SensorSnapshot { return snap }
	return &dsl.Env{
		RegisterFunctions: func(reg dsl.Registry) {
			dsl.RegisterCoreFunctions(reg)
			reg.Register("getTemperature", dsl.ZeroArgSensor(func() dsl.Value {
				return dsl.FloatValue(snap.Temperature)
			}))
			reg.Register("getHumidity", dsl.ZeroArgSensor(func() dsl.Value {
				return dsl.FloatValue(snap.Humidity)
			}))
			reg.Register("getProbeTemperature", dsl.ZeroArgSensor(func() dsl.Value {
				return dsl.FloatValue(snap.ProbeTemperature)
			}))
			reg.Register("getPhotoSensor", dsl.ZeroArgSensor(func() dsl.Value {
				return dsl.FloatValue(snap.LightLevel)
			}))
			reg.Register("getLightSwitch", dsl.ZeroArgSensor(func() dsl.Value {
				if snap.LightSwitch {
					return dsl.FloatValue(1)
				}
				return dsl.FloatValue(0)
			}))
			reg.Register("getCurrentTime", dsl.ZeroArgSensor(func() dsl.Value {
				return dsl.IntValue(int64(snap.SecondsSinceMidnight))
			}))
			c.computed.Register(reg, snapshotFn)
		},
		TryGetActuator: func(name string) (dsl.Setter, bool) {
			var i int
			if _, err := fmt.Sscanf(name, "relay_%d", &i); err != nil {
				return nil, false
			}
			if i < 0 || i >= c.bank.Count() {
				return nil, false
			}
			return c.bank.Setter(i), true
		},
		TryReadValue: func(name string) (dsl.Value, bool) {
			switch name {
			case "temperature":
				return dsl.FloatValue(snap.Temperature), true
			case "humidity":
				return dsl.FloatValue(snap.Humidity), true
			case "probeTemperature":
				return dsl.FloatValue(snap.ProbeTemperature), true
			case "photoSensor":
				return dsl.FloatValue(snap.LightLevel), true
			case "lightSwitch":
				if snap.LightSwitch {
					return dsl.FloatValue(1), true
				}
				return dsl.FloatValue(0), true
			case "currentTime":
				return dsl.IntValue(int64(snap.SecondsSinceMidnight)), true
			default:
				return dsl.Value{}, false
			}
		},
	}
}

// Tick captures a snapshot, evaluates the full rule set, and pushes
// the resolved relay states to the output driver.
func (c *Controller) Tick(ctx context.Context) {
	start := time.Now()
	snap := c.source.Snapshot()

	c.mutex.Lock()
	c.lastSnap = snap
	c.tickCount++
	rules := make([]string, len(c.rules))
	copy(rules, c.rules)
	c.mutex.Unlock()

	results := dsl.ProcessRuleSet(rules, c.buildEnv(snap), c.logger)

	if err := c.bank.Refresh(); err != nil {
		c.logger.Error("failed to apply relay states", "error", err)
	}
	c.observe(snap, results, time.Since(start))
	c.publish(snap)
}

func (c *Controller) observe(snap SensorSnapshot, results []dsl.RuleResult, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.TickDuration.Observe(elapsed.Seconds())
	c.metrics.TickCount.Inc()
	for _, r := range results {
		relay := fmt.Sprintf("%d", r.Relay)
		switch {
		case r.ParseErr != nil:
			c.metrics.RuleOutcomes.WithLabelValues(relay, "parse_error").Inc()
		case r.Value.IsError():
			c.metrics.RuleOutcomes.WithLabelValues(relay, "error").Inc()
			c.metrics.RuleErrors.WithLabelValues(relay, r.Value.ErrorCode().String()).Inc()
		case r.Value.Kind() == dsl.KindVoid:
			c.metrics.RuleOutcomes.WithLabelValues(relay, "explicit").Inc()
		default:
			c.metrics.RuleOutcomes.WithLabelValues(relay, "automatic").Inc()
		}
	}
	for i, on := range c.bank.States() {
		state := 0.0
		if on {
			state = 1.0
		}
		c.metrics.RelayState.WithLabelValues(fmt.Sprintf("%d", i)).Set(state)
	}
	c.metrics.SensorValue.WithLabelValues("temperature").Set(snap.Temperature)
	c.metrics.SensorValue.WithLabelValues("humidity").Set(snap.Humidity)
	c.metrics.SensorValue.WithLabelValues("probe_temperature").Set(snap.ProbeTemperature)
	c.metrics.SensorValue.WithLabelValues("light_level").Set(snap.LightLevel)
}

func (c *Controller) publish(snap SensorSnapshot) {
	if c.telemetry == nil {
		return
	}
	if err := c.telemetry.PublishSnapshot(snap); err != nil {
		c.logger.Warn("failed to publish snapshot", "error", err)
	}
	if err := c.telemetry.PublishRelays(c.bank.Values(), c.bank.States()); err != nil {
		c.logger.Warn("failed to publish relay states", "error", err)
	}
}

// Run evaluates the rule set on the configured interval until the
// context is canceled. The first tick happens immediately.
func (c *Controller) Run(ctx context.Context) error {
	interval := c.config.TickInterval()
	c.logger.Info("controller started",
		"node_id", c.nodeID, "relays", c.bank.Count(), "tick", interval)

	c.Tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopped", "node_id", c.nodeID)
			return ctx.Err()
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}
