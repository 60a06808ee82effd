package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRisorEngineCompileAndEvaluate(t *testing.T) {
	ctx := context.Background()
	engine := NewRisorEngine(SensorGlobals())

	script, err := engine.Compile(ctx, "(temperature * 9.0 / 5.0) + 32.0")
	require.NoError(t, err)

	value, err := script.Evaluate(ctx, map[string]any{"temperature": 20.0})
	require.NoError(t, err)

	f, err := value.Float()
	require.NoError(t, err)
	require.InDelta(t, 68.0, f, 0.001)
}

func TestRisorEngineBooleanResult(t *testing.T) {
	ctx := context.Background()
	engine := NewRisorEngine(SensorGlobals())

	script, err := engine.Compile(ctx, "humidity > 60 && !light_switch")
	require.NoError(t, err)

	value, err := script.Evaluate(ctx, map[string]any{
		"humidity":     72.5,
		"light_switch": false,
	})
	require.NoError(t, err)
	require.True(t, value.IsTruthy())

	f, err := value.Float()
	require.NoError(t, err)
	require.Equal(t, 1.0, f)
}

func TestRisorEngineCompileError(t *testing.T) {
	engine := NewRisorEngine(SensorGlobals())
	_, err := engine.Compile(context.Background(), "temperature +")
	require.Error(t, err)
}

func TestRisorEngineUnknownGlobal(t *testing.T) {
	engine := NewRisorEngine(SensorGlobals())
	_, err := engine.Compile(context.Background(), "voltage * 2")
	require.Error(t, err)
}

func TestRisorValueFloatRejectsStrings(t *testing.T) {
	ctx := context.Background()
	engine := NewRisorEngine(SensorGlobals())

	script, err := engine.Compile(ctx, `"hello"`)
	require.NoError(t, err)

	value, err := script.Evaluate(ctx, nil)
	require.NoError(t, err)

	_, err = value.Float()
	require.Error(t, err)
	require.Equal(t, "hello", value.String())
}
