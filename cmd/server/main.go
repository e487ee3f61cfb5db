package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/aggregator"
	"walrus-backend/internal/cache"
	"walrus-backend/internal/database"
	"walrus-backend/internal/httpapi"
	"walrus-backend/internal/logger"
	"walrus-backend/internal/models"
	"walrus-backend/internal/mqtt"
	"walrus-backend/internal/services"
	"walrus-backend/internal/simulator"
	"walrus-backend/pkg/config"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "walrus-backend")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	// === Core engines ===
	engine := aggregator.NewEngine(store, zlog)
	sim := simulator.NewEngine(store, zlog,
		simulator.WithDeviceID(cfg.SimulationDeviceID),
		simulator.WithInterval(cfg.SimulationIntervalSeconds),
	)

	// === Services ===
	monitorConfig := services.DefaultLivenessMonitorConfig()
	monitorConfig.PollingIntervalSeconds = cfg.LivenessPollSeconds
	monitor := services.NewLivenessMonitor(engine, zlog, monitorConfig)

	ingestConfig := services.DefaultIngestServiceConfig()
	if !cfg.MQTTEnabled {
		ingestConfig.AlertChannelSize = 0
	}
	ingest := services.NewIngestService(store, monitor, zlog, ingestConfig)

	go ingest.Start(ctx)
	go monitor.Start(ctx)

	// === MQTT transport ===
	if cfg.MQTTEnabled {
		mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, zlog)
		if err != nil {
			zlog.Fatal("Failed to initialize MQTT client", zap.Error(err))
		}
		defer mqttClient.Close()

		subscriber := mqtt.NewSubscriber(
			mqttClient.GetNativeClient(),
			mqtt.SubscriberConfig{TelemetryTopic: cfg.MQTTTopicTelemetry},
			ingest.PayloadChan,
			zlog,
		)
		if err := subscriber.SubscribeAll(); err != nil {
			zlog.Fatal("Failed to subscribe to MQTT topics", zap.Error(err))
		}

		publisher := mqtt.NewPublisher(
			mqttClient.GetNativeClient(),
			mqtt.PublisherConfig{AlertTopic: cfg.MQTTTopicAlerts},
			zlog,
		)
		go publisher.Start(ctx, ingest.AlertChan)
		go publisher.Start(ctx, monitor.AlertChan)
	} else {
		go logAlerts(ctx, zlog, monitor.AlertChan)
	}

	if cfg.SimulationAutoStart {
		sim.Start()
	}

	// === HTTP API ===
	router := httpapi.NewRouter(zlog)
	router.RegisterDeviceRoutes(httpapi.NewDeviceHandler(ingest, zlog), cfg.DeviceAPIKey)
	router.RegisterMobileRoutes(httpapi.NewMobileHandler(engine, zlog))
	router.RegisterSimulationRoutes(httpapi.NewSimulationHandler(sim, zlog))
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(store, zlog))

	if cfg.DeviceAPIKey == "" {
		zlog.Warn("ESP32_API_KEY is not set; device submissions will be rejected")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.CORS(cfg.AllowedOrigins, router), zlog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	zlog.Info("WALRUS backend running",
		zap.String("store", cfg.StoreBackend),
		zap.Bool("cache", cfg.RedisAddr != ""),
		zap.Bool("mqtt", cfg.MQTTEnabled),
		zap.Bool("simulation_autostart", cfg.SimulationAutoStart))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("HTTP server failed", zap.Error(err))
		}
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	sim.Stop()
	cancel()

	zlog.Info("Shutdown complete")
}

// openStore builds the configured reading log, wrapped in the Redis cache when enabled
func openStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (database.TelemetryStore, func(), error) {
	var store database.TelemetryStore

	switch cfg.StoreBackend {
	case "clickhouse":
		s, err := database.NewClickHouseStore(ctx, cfg.ClickHouseAddr, cfg.ClickHouseDB, cfg.ClickHouseUser, cfg.ClickHousePass, zlog)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case "postgres":
		s, err := database.NewPostgresStore(ctx, cfg.PostgresDSN, zlog)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case "memory":
		zlog.Warn("Using in-memory store; readings are lost on restart")
		store = database.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q (want clickhouse, postgres or memory)", cfg.StoreBackend)
	}

	if cfg.RedisAddr == "" {
		return store, func() { _ = store.Close() }, nil
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// The cache is optional; the store alone is still correct
		zlog.Warn("Redis unavailable, serving without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return store, func() { _ = store.Close() }, nil
	}

	cached := cache.NewStore(store, cache.NewRedisKVStore(redisClient),
		time.Duration(cfg.LatestCacheTTLSeconds)*time.Second, zlog)
	return cached, func() {
		_ = cached.Close()
		_ = redisClient.Close()
	}, nil
}

// logAlerts drains alerts when no broker is configured to receive them
func logAlerts(ctx context.Context, zlog *zap.Logger, alerts <-chan *models.Alert) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-alerts:
			zlog.Info("Device alert",
				zap.String("device_id", alert.DeviceID),
				zap.Strings("warnings", alert.Warnings))
		}
	}
}
