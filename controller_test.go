package growbox

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	rules  []string
	labels []string
}

func (m *memoryStore) SaveRules(_ context.Context, rules []string) error {
	m.rules = append([]string(nil), rules...)
	return nil
}

func (m *memoryStore) LoadRules(_ context.Context, count int) ([]string, error) {
	return padRules(m.rules, count), nil
}

func (m *memoryStore) SaveLabels(_ context.Context, labels []string) error {
	m.labels = append([]string(nil), labels...)
	return nil
}

func (m *memoryStore) LoadLabels(_ context.Context, count int) ([]string, error) {
	return padLabels(m.labels, count), nil
}

type fakePublisher struct {
	snapshots []SensorSnapshot
	relays    [][]bool
}

func (p *fakePublisher) PublishSnapshot(snap SensorSnapshot) error {
	p.snapshots = append(p.snapshots, snap)
	return nil
}

func (p *fakePublisher) PublishRelays(_ []RelayValue, states []bool) error {
	p.relays = append(p.relays, states)
	return nil
}

func newTestController(t *testing.T, config *Config, temp *float64, store RuleStore) *Controller {
	t.Helper()
	if store == nil {
		store = &memoryStore{}
	}
	source := SnapshotFunc(func() SensorSnapshot {
		return SensorSnapshot{Temperature: *temp, Humidity: 50, SecondsSinceMidnight: 43200}
	})
	controller, err := NewController(context.Background(), ControllerOptions{
		Config: config,
		Source: source,
		Store:  store,
	})
	require.NoError(t, err)
	return controller
}

func TestControllerTickDrivesRelays(t *testing.T) {
	ctx := context.Background()
	temp := 30.0
	store := &memoryStore{rules: []string{`["GT",["getTemperature"],25]`, `["NOP"]`}}
	controller := newTestController(t, &Config{RelayCount: 2}, &temp, store)

	controller.Tick(ctx)
	assert.True(t, controller.Bank().States()[0])
	assert.False(t, controller.Bank().States()[1])

	temp = 20.0
	controller.Tick(ctx)
	assert.False(t, controller.Bank().States()[0])
}

func TestControllerBareSensorNames(t *testing.T) {
	ctx := context.Background()
	temp := 30.0
	store := &memoryStore{rules: []string{`["GT","temperature",25]`}}
	controller := newTestController(t, &Config{RelayCount: 1}, &temp, store)

	controller.Tick(ctx)
	assert.True(t, controller.Bank().States()[0])
}

func TestControllerSetRule(t *testing.T) {
	ctx := context.Background()
	temp := 30.0
	store := &memoryStore{}
	controller := newTestController(t, &Config{RelayCount: 2}, &temp, store)

	// SetRule persists and re-evaluates immediately.
	require.NoError(t, controller.SetRule(ctx, 0, `["SET","relay_0",1]`))
	assert.True(t, controller.Bank().States()[0])
	assert.Equal(t, `["SET","relay_0",1]`, store.rules[0])

	rule, err := controller.Rule(0)
	require.NoError(t, err)
	assert.Equal(t, `["SET","relay_0",1]`, rule)

	// An empty rule resets to the default.
	require.NoError(t, controller.SetRule(ctx, 0, ""))
	rule, err = controller.Rule(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRule, rule)

	assert.Error(t, controller.SetRule(ctx, 9, `["NOP"]`))
}

func TestControllerUnparseableRuleLeavesOthersAlone(t *testing.T) {
	ctx := context.Background()
	temp := 30.0
	store := &memoryStore{rules: []string{`{broken`, `["SET","relay_1",1]`}}
	controller := newTestController(t, &Config{RelayCount: 2}, &temp, store)

	controller.Tick(ctx)
	assert.False(t, controller.Bank().States()[0])
	assert.True(t, controller.Bank().States()[1])
}

func TestControllerForceRelay(t *testing.T) {
	temp := 20.0
	controller := newTestController(t, &Config{RelayCount: 1}, &temp, nil)

	require.NoError(t, controller.ForceRelay(0, StateOn))
	assert.True(t, controller.Bank().States()[0])

	require.NoError(t, controller.ForceRelay(0, StateDontCare))
	assert.False(t, controller.Bank().States()[0])

	assert.Error(t, controller.ForceRelay(4, StateOn))
}

func TestControllerLabels(t *testing.T) {
	ctx := context.Background()
	temp := 20.0
	store := &memoryStore{}
	controller := newTestController(t, &Config{RelayCount: 2}, &temp, store)

	require.NoError(t, controller.SetLabel(ctx, 1, "fan"))
	assert.Equal(t, "fan", controller.Bank().Labels()[1])
	assert.Equal(t, "fan", store.labels[1])
}

func TestControllerComputedSensor(t *testing.T) {
	ctx := context.Background()
	temp := 28.0
	config := &Config{
		RelayCount: 1,
		Computed: []ComputedSensor{
			{Name: "getHeatIndex", Expression: "temperature + 0.1 * humidity"},
		},
	}
	store := &memoryStore{rules: []string{`["GT",["getHeatIndex"],30]`}}
	controller := newTestController(t, config, &temp, store)

	// 28 + 0.1*50 = 33 > 30
	controller.Tick(ctx)
	assert.True(t, controller.Bank().States()[0])

	temp = 20.0
	controller.Tick(ctx)
	assert.False(t, controller.Bank().States()[0])
}

func TestControllerComputedSensorCompileError(t *testing.T) {
	temp := 20.0
	config := &Config{
		RelayCount: 1,
		Computed:   []ComputedSensor{{Name: "bad", Expression: "temperature +"}},
	}
	source := SnapshotFunc(func() SensorSnapshot {
		return SensorSnapshot{Temperature: temp}
	})
	_, err := NewController(context.Background(), ControllerOptions{
		Config: config,
		Source: source,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestControllerTelemetryAndMetrics(t *testing.T) {
	ctx := context.Background()
	temp := 30.0
	publisher := &fakePublisher{}
	metrics := NewMetrics()
	store := &memoryStore{rules: []string{`["GT",["getTemperature"],25]`}}
	source := SnapshotFunc(func() SensorSnapshot {
		return SensorSnapshot{Temperature: temp}
	})
	controller, err := NewController(ctx, ControllerOptions{
		Config:    &Config{RelayCount: 1},
		Source:    source,
		Store:     store,
		Telemetry: publisher,
		Metrics:   metrics,
	})
	require.NoError(t, err)

	controller.Tick(ctx)
	controller.Tick(ctx)

	require.Len(t, publisher.snapshots, 2)
	require.Len(t, publisher.relays, 2)
	assert.Equal(t, []bool{true}, publisher.relays[0])

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.TickCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RelayState.WithLabelValues("0")))
	assert.Equal(t, 30.0, testutil.ToFloat64(metrics.SensorValue.WithLabelValues("temperature")))
}

func TestControllerGlobalInfo(t *testing.T) {
	ctx := context.Background()
	temp := 20.0
	controller := newTestController(t, &Config{Name: "sunroom", RelayCount: 3}, &temp, nil)

	controller.Tick(ctx)
	info := controller.GlobalInfo()
	assert.Equal(t, "sunroom", info.Name)
	assert.Equal(t, 3, info.RelayCount)
	assert.Equal(t, int64(1), info.TickCount)
	assert.True(t, strings.HasPrefix(info.NodeID, "node_"), info.NodeID)
}

func TestNewControllerValidation(t *testing.T) {
	ctx := context.Background()
	_, err := NewController(ctx, ControllerOptions{})
	assert.Error(t, err)

	_, err = NewController(ctx, ControllerOptions{Config: &Config{RelayCount: 1}})
	assert.Error(t, err, "snapshot source is required")
}
