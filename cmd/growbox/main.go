package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/verdantlabs/growbox"
	"github.com/verdantlabs/growbox/httpapi"
	"github.com/verdantlabs/growbox/retry"
	"github.com/verdantlabs/growbox/telemetry"
)

// CLI configuration
type cliConfig struct {
	ConfigFile string
	Verbose    bool
	JSON       bool
	Simulate   bool
}

func main() {
	cli := parseFlags()

	if cli.ConfigFile == "" {
		color.Red("Error: config file is required")
		flag.Usage()
		os.Exit(1)
	}
	if _, err := os.Stat(cli.ConfigFile); os.IsNotExist(err) {
		color.Red("Error: config file '%s' not found", cli.ConfigFile)
		os.Exit(1)
	}

	logger := setupLogger(cli)

	color.Blue("Loading config from: %s", cli.ConfigFile)
	config, err := growbox.LoadConfigFile(cli.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	color.Cyan("Node: %s (%d relays)", config.Name, config.RelayCount)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := setupStore(ctx, config)
	snapshots := growbox.NewSnapshotStore()
	metrics := growbox.NewMetrics()

	var publisher growbox.TelemetryPublisher
	if config.MQTT != nil && config.MQTT.BrokerURL != "" {
		var mqttPublisher *telemetry.Publisher
		err := retry.Do(ctx, func() error {
			p, err := telemetry.NewPublisher(telemetry.PublisherOptions{
				BrokerURL:   config.MQTT.BrokerURL,
				ClientID:    config.MQTT.ClientID,
				TopicPrefix: config.MQTT.TopicPrefix,
				Logger:      logger,
				Snapshots:   snapshots,
			})
			if err != nil {
				return err
			}
			mqttPublisher = p
			return nil
		}, retry.WithMaxRetries(5), retry.WithBaseWait(time.Second))
		if err != nil {
			log.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		defer mqttPublisher.Close()
		publisher = mqttPublisher
		color.Blue("Telemetry: %s", config.MQTT.BrokerURL)
	}

	controller, err := growbox.NewController(ctx, growbox.ControllerOptions{
		Config:    config,
		Source:    snapshots,
		Store:     store,
		Driver:    growbox.NewLogOutputDriver(logger),
		Logger:    logger,
		Telemetry: publisher,
		Metrics:   metrics,
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	if cli.Simulate {
		go simulateReadings(ctx, snapshots)
		color.Magenta("Simulated sensor readings enabled")
	}

	server := httpapi.NewServer(httpapi.ServerOptions{
		Controller: controller,
		Metrics:    metrics,
		Logger:     logger,
		AccessLog:  os.Stdout,
	})
	go func() {
		if err := server.ListenAndServe(config.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	color.Green("Starting controller (ID: %s)...", controller.NodeID())
	if err := controller.Run(ctx); err != nil && err != context.Canceled {
		color.Red("Controller stopped: %v", err)
		os.Exit(1)
	}
	color.Green("Shut down cleanly")
}

func parseFlags() *cliConfig {
	cli := &cliConfig{}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to the JSON or YAML config file (required)")
	flag.StringVar(&cli.ConfigFile, "c", "", "Path to the JSON or YAML config file (shorthand)")

	flag.BoolVar(&cli.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&cli.Verbose, "v", false, "Enable verbose logging (shorthand)")

	flag.BoolVar(&cli.JSON, "json", false, "Log in JSON format")
	flag.BoolVar(&cli.Simulate, "simulate", false, "Generate synthetic sensor readings")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Growbox - rule-driven environmental controller

Usage: %s [options] -config <config.yaml>

Examples:
  # Run with file-backed rule storage
  %s -config growbox.yaml

  # Run with synthetic sensor data for local development
  %s -config growbox.yaml -simulate -verbose

Options:
`, os.Args[0], os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	return cli
}

func setupLogger(cli *cliConfig) *slog.Logger {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	if cli.JSON {
		return growbox.NewJSONLogger(level)
	}
	return growbox.NewLogger(level)
}

func setupStore(ctx context.Context, config *growbox.Config) growbox.RuleStore {
	if config.PostgresURL != "" {
		var store *growbox.PostgresRuleStore
		err := retry.Do(ctx, func() error {
			s, err := growbox.NewPostgresRuleStore(ctx, config.PostgresURL)
			if err != nil {
				return err
			}
			store = s
			return nil
		}, retry.WithMaxRetries(5), retry.WithBaseWait(time.Second))
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		color.Blue("Rule storage: postgres")
		return store
	}
	store, err := growbox.NewFileRuleStore(config.DataDir)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}
	color.Blue("Rule storage: %s", config.DataDir)
	return store
}

// simulateReadings feeds slowly drifting synthetic values into the
// snapshot store so rules can be exercised without hardware.
func simulateReadings(ctx context.Context, snapshots *growbox.SnapshotStore) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshots.Update(func(snap *growbox.SensorSnapshot) {
				snap.Temperature = 18 + rand.Float64()*10
				snap.Humidity = 30 + rand.Float64()*40
				snap.ProbeTemperature = 16 + rand.Float64()*8
				snap.LightLevel = rand.Float64() * 100
				snap.LightSwitch = rand.Intn(2) == 1
			})
		}
	}
}
