package growbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigString("relay_count: 4")
	require.NoError(t, err)

	assert.Equal(t, "growbox", cfg.Name)
	assert.Equal(t, 4, cfg.RelayCount)
	assert.Equal(t, "30s", cfg.Tick)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30.0, cfg.TickInterval().Seconds())
}

func TestLoadConfigFull(t *testing.T) {
	cfg, err := LoadConfigString(`
name: sunroom
relay_count: 8
tick: 10s
listen_addr: ":9000"
relay_labels: [heater, fan]
mqtt:
  broker_url: tcp://localhost:1883
computed:
  - name: getHeatIndex
    expression: temperature + 0.1 * humidity
`)
	require.NoError(t, err)

	assert.Equal(t, "sunroom", cfg.Name)
	assert.Equal(t, 8, cfg.RelayCount)
	assert.Equal(t, []string{"heater", "fan"}, cfg.RelayLabels)
	require.NotNil(t, cfg.MQTT)
	assert.Equal(t, "growbox/sunroom", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "sunroom", cfg.MQTT.ClientID)
	require.Len(t, cfg.Computed, 1)
	assert.Equal(t, "getHeatIndex", cfg.Computed[0].Name)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing relay count", "name: box"},
		{"bad tick", "relay_count: 4\ntick: soon"},
		{"duplicate computed sensor", `
relay_count: 4
computed:
  - {name: x, expression: "1"}
  - {name: x, expression: "2"}
`},
		{"computed sensor without expression", `
relay_count: 4
computed:
  - {name: x}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigString(tt.yaml)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: filed\nrelay_count: 2\n"), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "filed", cfg.Name)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
