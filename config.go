package growbox

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ComputedSensor defines a derived reading: a named zero-argument function
// whose value is a script expression evaluated against the current snapshot.
type ComputedSensor struct {
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
}

// MQTTConfig enables telemetry publishing and remote-probe ingestion when a
// broker URL is set.
type MQTTConfig struct {
	BrokerURL   string `json:"broker_url" yaml:"broker_url"`
	ClientID    string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	TopicPrefix string `json:"topic_prefix,omitempty" yaml:"topic_prefix,omitempty"`
}

// Config describes one environmental-control node.
type Config struct {
	Name        string           `json:"name" yaml:"name"`
	RelayCount  int              `json:"relay_count" yaml:"relay_count"`
	RelayLabels []string         `json:"relay_labels,omitempty" yaml:"relay_labels,omitempty"`
	Tick        string           `json:"tick,omitempty" yaml:"tick,omitempty"`
	ListenAddr  string           `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	DataDir     string           `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	PostgresURL string           `json:"postgres_url,omitempty" yaml:"postgres_url,omitempty"`
	MQTT        *MQTTConfig      `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	Computed    []ComputedSensor `json:"computed,omitempty" yaml:"computed,omitempty"`
}

// LoadConfigFile loads a node configuration from a YAML file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadConfigString(string(data))
}

// LoadConfigString loads a node configuration from a YAML string.
func LoadConfigString(data string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Name == "" {
		c.Name = "growbox"
	}
	if c.RelayCount <= 0 {
		return fmt.Errorf("relay_count must be positive")
	}
	if c.Tick == "" {
		c.Tick = "30s"
	}
	if _, err := time.ParseDuration(c.Tick); err != nil {
		return fmt.Errorf("invalid tick interval %q: %w", c.Tick, err)
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.MQTT != nil && c.MQTT.BrokerURL != "" {
		if c.MQTT.TopicPrefix == "" {
			c.MQTT.TopicPrefix = "growbox/" + c.Name
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = c.Name
		}
	}
	seen := make(map[string]bool, len(c.Computed))
	for _, cs := range c.Computed {
		if cs.Name == "" || cs.Expression == "" {
			return fmt.Errorf("computed sensors need both name and expression")
		}
		if seen[cs.Name] {
			return fmt.Errorf("duplicate computed sensor %q", cs.Name)
		}
		seen[cs.Name] = true
	}
	return nil
}

// TickInterval returns the parsed control-loop period.
func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Tick)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
