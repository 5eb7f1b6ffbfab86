// Vizio SmartCast bridge for the Gray Logic platform.
//
// The bridge manages persistent sessions to Vizio SmartCast TVs on the
// local network, exposes them to the Gray Logic hub over MQTT, and offers
// a local REST/WebSocket API for commissioning, pairing, and direct
// control.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-vizio/internal/api"
	"github.com/nerrad567/gray-logic-vizio/internal/bridge"
	"github.com/nerrad567/gray-logic-vizio/internal/device"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/tsdb"
	"github.com/nerrad567/gray-logic-vizio/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error { //nolint:gocognit // Linear startup wiring
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Vizio bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database and run migrations
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Load the device registry
	registry := device.NewRegistry(device.NewSQLiteRepository(db.DB))
	if loadErr := registry.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading device registry: %w", loadErr)
	}
	log.Info("device registry loaded", "devices", registry.Count())

	// Connect to InfluxDB (optional)
	var influx *tsdb.Client
	if cfg.InfluxDB.Enabled {
		influx, err = tsdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influx.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influx.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT with the health topic as LWT
	topics := mqtt.Topics{}
	willPayload, err := json.Marshal(bridge.HealthMessage{
		BridgeID:  cfg.Bridge.ID,
		Timestamp: time.Now().UTC(),
		Status:    bridge.HealthStatusOffline,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("building LWT payload: %w", err)
	}

	mqttClient, err := mqtt.Connect(cfg.MQTT, mqtt.ConnectOptions{
		WillTopic:   topics.Health(),
		WillPayload: willPayload,
	})
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Create the session layer and a session per configured TV
	bus := session.NewBus()
	manager := session.NewManager(session.ManagerOptions{
		Bus:    bus,
		Logger: log,
		Timing: session.DefaultTiming(),
	})
	defer func() {
		log.Info("closing TV sessions")
		manager.Close()
	}()

	for _, tv := range registry.All() {
		if _, ensureErr := manager.Ensure(tv); ensureErr != nil {
			log.Error("creating session", "device_id", tv.ID, "error", ensureErr)
		}
	}

	// Start the MQTT bridge
	var recorder bridge.Recorder
	if influx != nil {
		recorder = influx
	}
	mqttBridge, err := bridge.NewBridge(bridge.BridgeOptions{
		BridgeID:       cfg.Bridge.ID,
		Version:        version,
		QoS:            byte(cfg.MQTT.QoS),
		MQTT:           mqttClient,
		Sessions:       sessionAdapter{manager},
		Bus:            bus,
		Store:          registry,
		Recorder:       recorder,
		HealthInterval: time.Duration(cfg.Bridge.HealthInterval) * time.Second,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("creating MQTT bridge: %w", err)
	}
	if err := mqttBridge.Start(ctx); err != nil {
		return fmt.Errorf("starting MQTT bridge: %w", err)
	}
	defer func() {
		log.Info("stopping MQTT bridge")
		mqttBridge.Stop()
	}()

	// Start the local REST/WebSocket API
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Registry: registry,
		Sessions: manager,
		Bus:      bus,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influx, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Connect configured TVs
	if cfg.Bridge.ConnectOnStart {
		manager.ConnectAll()
		log.Info("connecting configured TVs", "devices", manager.Count())
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// sessionAdapter exposes *session.Manager through the bridge's provider
// interface.
type sessionAdapter struct {
	manager *session.Manager
}

func (a sessionAdapter) Session(deviceID string) (bridge.TVSession, bool) {
	s, err := a.manager.Get(deviceID)
	if err != nil {
		return nil, false
	}
	return s, true
}

func (a sessionAdapter) Sessions() []bridge.TVSession {
	all := a.manager.All()
	out := make([]bridge.TVSession, len(all))
	for i, s := range all {
		out[i] = s
	}
	return out
}

// getConfigPath returns the configuration file path.
// Uses VIZIO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VIZIO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections concurrently.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influx: InfluxDB client to check (nil when disabled)
//   - apiServer: API server to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influx *tsdb.Client, apiServer *api.Server) error {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g, checkCtx := errgroup.WithContext(checkCtx)
	g.Go(func() error {
		if err := db.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := mqttClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := apiServer.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
		return nil
	})
	if influx != nil {
		g.Go(func() error {
			if err := influx.HealthCheck(checkCtx); err != nil {
				return fmt.Errorf("influxdb: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
