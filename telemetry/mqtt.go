// Package telemetry publishes controller state to an MQTT broker and
// accepts remote probe readings over the same connection.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/verdantlabs/growbox"
)

// PublisherOptions configures an MQTT publisher.
type PublisherOptions struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
	Logger      *slog.Logger

	// Snapshots updates the local snapshot store when a remote probe
	// reports a reading. Optional.
	Snapshots *growbox.SnapshotStore
}

// Publisher sends snapshots and relay states to the broker after each
// tick, and feeds remote probe temperatures into the snapshot store.
type Publisher struct {
	client mqtt.Client
	prefix string
	logger *slog.Logger
}

type probeReading struct {
	TemperatureC float64 `json:"temperature_c"`
}

// NewPublisher connects to the broker and subscribes to the probe
// topic when a snapshot store is supplied.
func NewPublisher(opts PublisherOptions) (*Publisher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker: %w", token.Error())
	}

	p := &Publisher{
		client: client,
		prefix: opts.TopicPrefix,
		logger: opts.Logger,
	}
	if opts.Snapshots != nil {
		topic := p.prefix + "/probe/+"
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			p.handleProbe(opts.Snapshots, msg)
		})
		if token.Wait() && token.Error() != nil {
			client.Disconnect(250)
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
		}
	}
	opts.Logger.Info("mqtt connected", "broker", opts.BrokerURL, "prefix", opts.TopicPrefix)
	return p, nil
}

func (p *Publisher) handleProbe(store *growbox.SnapshotStore, msg mqtt.Message) {
	var reading probeReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		p.logger.Warn("ignoring malformed probe reading",
			"topic", msg.Topic(), "error", err)
		return
	}
	store.Update(func(snap *growbox.SensorSnapshot) {
		snap.ProbeTemperature = reading.TemperatureC
	})
	p.logger.Debug("probe reading received",
		"topic", msg.Topic(), "temperature_c", reading.TemperatureC)
}

// PublishSnapshot sends the latest readings on <prefix>/snapshot.
func (p *Publisher) PublishSnapshot(snap growbox.SensorSnapshot) error {
	return p.publish(p.prefix+"/snapshot", snap)
}

type relayMessage struct {
	Values []growbox.RelayValue `json:"values"`
	States []bool               `json:"states"`
}

// PublishRelays sends the relay composite values and resolved states
// on <prefix>/relays.
func (p *Publisher) PublishRelays(values []growbox.RelayValue, states []bool) error {
	return p.publish(p.prefix+"/relays", relayMessage{Values: values, States: states})
}

func (p *Publisher) publish(topic string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry payload: %w", err)
	}
	token := p.client.Publish(topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
