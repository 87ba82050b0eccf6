package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/piresc/fleetcast/internal/pkg/config"
	"github.com/piresc/fleetcast/internal/pkg/database"
	"github.com/piresc/fleetcast/internal/pkg/health"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/middleware"
	mqttpkg "github.com/piresc/fleetcast/internal/pkg/mqtt"
	natspkg "github.com/piresc/fleetcast/internal/pkg/nats"
	nrpkg "github.com/piresc/fleetcast/internal/pkg/newrelic"
	"github.com/piresc/fleetcast/internal/pkg/server"
	wspkg "github.com/piresc/fleetcast/internal/pkg/websocket"
	"github.com/piresc/fleetcast/services/tracking"
	"github.com/piresc/fleetcast/services/tracking/broadcast"
	"github.com/piresc/fleetcast/services/tracking/gateway"
	"github.com/piresc/fleetcast/services/tracking/handler"
	httpHandler "github.com/piresc/fleetcast/services/tracking/handler/http"
	mqttHandler "github.com/piresc/fleetcast/services/tracking/handler/mqtt"
	natsHandler "github.com/piresc/fleetcast/services/tracking/handler/nats"
	wsHandler "github.com/piresc/fleetcast/services/tracking/handler/websocket"
	"github.com/piresc/fleetcast/services/tracking/repository"
	"github.com/piresc/fleetcast/services/tracking/store"
	"github.com/piresc/fleetcast/services/tracking/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "tracking-service"
	configPath := os.Getenv("TRACKING_CONFIG_PATH")
	if configPath == "" {
		configPath = "config/tracking.env"
	}
	configs := config.InitConfig(configPath)

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	// Each process tags its NATS fan-out so it can skip its own echoes
	origin := uuid.NewString()

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
		zap.String("origin", origin),
	)

	shutdown := server.NewShutdownManager(zapLogger)
	var checkers []health.Checker

	// Initialize Redis client
	var snapshotRepo tracking.SnapshotRepo
	if configs.Redis.Host != "" {
		redisClient, err := database.NewRedisClient(configs.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
		checkers = append(checkers, health.CheckerFunc{CheckName: "redis", Check: redisClient.Ping})
		snapshotRepo = repository.NewSnapshotRepository(redisClient, configs.Tracking.StalenessWindow)
	} else {
		zapLogger.Info("Redis host not set, snapshot mirror disabled")
	}

	// Initialize NATS client
	var natsClient *natspkg.Client
	var trackingGW tracking.TrackingGW
	if configs.NATS.URL != "" {
		natsClient, err = natspkg.NewClient(configs.NATS.URL, appName+"-"+origin)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		shutdown.Register("nats", func(context.Context) error {
			natsClient.Close()
			return nil
		})
		checkers = append(checkers, health.CheckerFunc{CheckName: "nats", Check: func(context.Context) error {
			if !natsClient.IsConnected() {
				return natspkg.ErrNotConnected
			}
			return nil
		}})
		trackingGW = gateway.NewTrackingGW(natsClient, configs.NATS.Subject, origin)
	} else {
		zapLogger.Info("NATS url not set, running as a single instance")
	}

	// Initialize usecase
	trackingUC := usecase.NewTrackingUC(configs.Tracking, store.New(), broadcast.NewRegistry(), snapshotRepo, trackingGW)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	if err := trackingUC.Restore(restoreCtx); err != nil {
		zapLogger.Warn("Starting with an empty snapshot", zap.Error(err))
	}
	cancelRestore()

	// Start mirror and evictor workers
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		trackingUC.Run(workersCtx)
	}()
	shutdown.Register("tracking-workers", func(ctx context.Context) error {
		stopWorkers()
		select {
		case <-workersDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	shutdown.Register("subscribers", func(context.Context) error {
		trackingUC.CloseSubscribers()
		return nil
	})

	// Initialize NATS consumers
	if natsClient != nil {
		peerHandler := natsHandler.NewPeerHandler(trackingUC, natsClient, configs.NATS.Subject, origin)
		if err := peerHandler.InitNATSConsumers(); err != nil {
			zapLogger.Fatal("Failed to initialize NATS consumers", zap.Error(err))
		}
		shutdown.Register("nats-consumers", func(context.Context) error {
			peerHandler.Close()
			return nil
		})
	}

	// Initialize MQTT ingestion
	if configs.MQTT.Broker != "" {
		mqttClient, err := mqttpkg.NewClient(configs.MQTT)
		if err != nil {
			zapLogger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		locationHandler := mqttHandler.NewLocationHandler(trackingUC, mqttClient, configs.MQTT.Topic, configs.MQTT.QoS)
		if err := locationHandler.Subscribe(); err != nil {
			zapLogger.Fatal("Failed to subscribe to MQTT topic", zap.Error(err))
		}
		shutdown.Register("mqtt", func(context.Context) error {
			locationHandler.Unsubscribe()
			mqttClient.Disconnect(250)
			return nil
		})
	}

	// Initialize handlers
	manager := wspkg.NewManager(configs.JWT, configs.Tracking.AuthEnabled)
	Handler := handler.NewHandler(
		httpHandler.NewVehicleHandler(trackingUC),
		wsHandler.NewTrackingHandler(workersCtx, trackingUC, manager, configs.Tracking),
	)

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true

	// Add middlewares
	if nrApp != nil {
		e.Use(nrecho.Middleware(nrApp))
	}
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	// Register health endpoints
	health.RegisterHealthEndpoints(e, appName, checkers...)

	// Register service routes
	Handler.RegisterRoutes(e)

	// Start server
	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Host, configs.Server.Port, configs.Server.ShutdownTimeout)
	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with error", zap.String("app", appName), zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdown.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Shutdown completed with errors", zap.Error(err))
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
}
