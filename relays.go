package growbox

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/verdantlabs/growbox/dsl"
)

// RelayValue is the persisted per-relay composite state: the tens digit is
// the rule engine's auto intent (0=off, 1=on, 2=don't care) and the ones
// digit is the operator's force override (0=off, 1=on, 2=none). Rule
// evaluation only ever writes the tens digit; the force digit belongs to the
// HTTP API.
type RelayValue int

// Auto intent and force override digit values.
const (
	StateOff      = 0
	StateOn       = 1
	StateDontCare = 2
)

// Auto returns the rule engine's intent digit.
func (v RelayValue) Auto() int { return int(v) / 10 }

// Force returns the operator override digit.
func (v RelayValue) Force() int { return int(v) % 10 }

// On resolves the composite to a physical state: a force override wins
// outright, otherwise the auto intent decides, and don't-care means off.
func (v RelayValue) On() bool {
	switch v.Force() {
	case StateOn:
		return true
	case StateOff:
		return false
	default:
		return v.Auto() == StateOn
	}
}

func (v RelayValue) withAuto(auto int) RelayValue {
	return RelayValue(auto*10 + v.Force())
}

func (v RelayValue) withForce(force int) RelayValue {
	return RelayValue(v.Auto()*10 + force)
}

// OutputDriver receives resolved physical relay states on every refresh.
// GPIO, PWM and inverted-wiring concerns live behind this interface.
type OutputDriver interface {
	Apply(states []bool) error
}

// LogOutputDriver logs state transitions instead of driving hardware.
type LogOutputDriver struct {
	logger *slog.Logger
	last   []bool
}

func NewLogOutputDriver(logger *slog.Logger) *LogOutputDriver {
	return &LogOutputDriver{logger: logger}
}

func (d *LogOutputDriver) Apply(states []bool) error {
	for i, on := range states {
		if i < len(d.last) && d.last[i] == on {
			continue
		}
		d.logger.Info("relay output changed", "relay", i, "on", on)
	}
	d.last = append(d.last[:0], states...)
	return nil
}

// RelayBank owns the relay-state array. The rule engine's actuator setters
// write auto intents during evaluation while HTTP handlers write force
// overrides, so all access goes through one mutex.
type RelayBank struct {
	mu     sync.Mutex
	values []RelayValue
	labels []string
	driver OutputDriver
}

// NewRelayBank returns a bank of count relays, all starting forced-none and
// auto-don't-care.
func NewRelayBank(count int, driver OutputDriver) *RelayBank {
	values := make([]RelayValue, count)
	labels := make([]string, count)
	for i := range values {
		values[i] = RelayValue(StateDontCare*10 + StateDontCare)
		labels[i] = fmt.Sprintf("relay_%d", i)
	}
	return &RelayBank{values: values, labels: labels, driver: driver}
}

// Count returns the number of relay slots.
func (b *RelayBank) Count() int {
	return len(b.values)
}

// Values returns a copy of the composite relay values.
func (b *RelayBank) Values() []RelayValue {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RelayValue, len(b.values))
	copy(out, b.values)
	return out
}

// SetAuto writes the auto-intent digit of relay i, preserving the force
// digit. Out-of-range intents clamp to don't-care, matching setter calls
// with arbitrary numeric rule results.
func (b *RelayBank) SetAuto(i int, value float64) {
	auto := int(value)
	if auto < StateOff || auto > StateDontCare {
		auto = StateDontCare
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.values) {
		return
	}
	b.values[i] = b.values[i].withAuto(auto)
}

// SetForce writes the operator override digit of relay i.
func (b *RelayBank) SetForce(i, force int) error {
	if force < StateOff || force > StateDontCare {
		return NewValidationError("invalid force value %d", force)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.values) {
		return NewRelayNotFoundError(i)
	}
	b.values[i] = b.values[i].withForce(force)
	return nil
}

// Setter returns the auto-intent setter for relay i, in the shape the rule
// engine's SET operation expects.
func (b *RelayBank) Setter(i int) dsl.Setter {
	return func(v float64) { b.SetAuto(i, v) }
}

// Labels returns a copy of the relay labels.
func (b *RelayBank) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.labels))
	copy(out, b.labels)
	return out
}

// SetLabel renames relay i.
func (b *RelayBank) SetLabel(i int, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.labels) {
		return NewRelayNotFoundError(i)
	}
	b.labels[i] = label
	return nil
}

// SetLabels replaces all labels, ignoring extras beyond the bank size.
func (b *RelayBank) SetLabels(labels []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.labels {
		if i < len(labels) && labels[i] != "" {
			b.labels[i] = labels[i]
		}
	}
}

// States resolves every composite value to its physical on/off state.
func (b *RelayBank) States() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bool, len(b.values))
	for i, v := range b.values {
		out[i] = v.On()
	}
	return out
}

// Refresh pushes the resolved states to the output driver. The bank's mutex
// is held across Apply: Refresh is called from both the control loop and
// HTTP handler goroutines, and the driver must never see two concurrent or
// out-of-order state snapshots.
func (b *RelayBank) Refresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.driver == nil {
		return nil
	}
	states := make([]bool, len(b.values))
	for i, v := range b.values {
		states[i] = v.On()
	}
	return b.driver.Apply(states)
}
