package growbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/verdantlabs/growbox/dsl"
	"github.com/verdantlabs/growbox/script"
)

type compiledSensor struct {
	name   string
	script script.Script
}

// ComputedSensorSet holds compiled derived-sensor expressions. Each
// entry becomes a zero argument rule function whose reading is
// recomputed from the current snapshot on every call.
type ComputedSensorSet struct {
	sensors []compiledSensor
	logger  *slog.Logger
}

// CompileComputedSensors compiles each configured expression once.
// A sensor that fails to compile aborts startup rather than producing
// silent evaluation errors on every tick.
func CompileComputedSensors(ctx context.Context, compiler script.Compiler, defs []ComputedSensor, logger *slog.Logger) (*ComputedSensorSet, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	set := &ComputedSensorSet{logger: logger}
	for _, def := range defs {
		compiled, err := compiler.Compile(ctx, def.Expression)
		if err != nil {
			return nil, fmt.Errorf("computed sensor %q: %w", def.Name, err)
		}
		set.sensors = append(set.sensors, compiledSensor{name: def.Name, script: compiled})
	}
	return set, nil
}

// Register installs each computed sensor as a rule function. The
// snapshot callback is consulted on every evaluation so rules always
// see the latest readings.
func (s *ComputedSensorSet) Register(reg dsl.Registry, snapshot func() SensorSnapshot) {
	for _, sensor := range s.sensors {
		sensor := sensor
		reg.Register(sensor.name, dsl.ZeroArgSensor(func() dsl.Value {
			return s.read(sensor, snapshot())
		}))
	}
}

// Names returns the registered function names in configuration order.
func (s *ComputedSensorSet) Names() []string {
	names := make([]string, 0, len(s.sensors))
	for _, sensor := range s.sensors {
		names = append(names, sensor.name)
	}
	return names
}

func (s *ComputedSensorSet) read(sensor compiledSensor, snap SensorSnapshot) dsl.Value {
	value, err := sensor.script.Evaluate(context.Background(), snapshotGlobals(snap))
	if err != nil {
		s.logger.Warn("computed sensor evaluation failed",
			"sensor", sensor.name, "error", err)
		return dsl.ErrorValue(dsl.ErrSensorRead)
	}
	f, err := value.Float()
	if err != nil {
		s.logger.Warn("computed sensor produced non-numeric value",
			"sensor", sensor.name, "error", err)
		return dsl.ErrorValue(dsl.ErrSensorRead)
	}
	return dsl.FloatValue(f)
}

func snapshotGlobals(snap SensorSnapshot) map[string]any {
	return map[string]any{
		"temperature":            snap.Temperature,
		"humidity":               snap.Humidity,
		"probe_temperature":      snap.ProbeTemperature,
		"light_level":            snap.LightLevel,
		"light_switch":           snap.LightSwitch,
		"seconds_since_midnight": float64(snap.SecondsSinceMidnight),
	}
}
