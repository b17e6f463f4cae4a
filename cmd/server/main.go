package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	"collabcore/internal/core/services"
	handlers "collabcore/internal/handlers/http"
	"collabcore/internal/infrastructure/events"
	"collabcore/internal/infrastructure/feed"
	"collabcore/internal/infrastructure/monitoring"
	"collabcore/pkg/config"
	"collabcore/pkg/logger"
	"collabcore/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerEndpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	healthChecker := monitoring.NewHealthChecker()

	var collector *monitoring.PrometheusCollector
	if cfg.Monitoring.PrometheusEnabled {
		collector = monitoring.NewPrometheusCollector()
	}

	// Event fan-out: the in-process bus always runs so the websocket feed
	// works standalone; Redis joins in when cross-instance delivery is on.
	bus := events.NewBus(sugar)
	var publisher ports.EventPublisher = bus
	var redisClient *redis.Client
	if cfg.Events.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddress,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		healthChecker.AddRedisCheck(redisClient, cfg.Server.ReadTimeout)

		redisPublisher := events.NewRedisPublisher(redisClient, cfg.Events.Channel, uuid.NewString(), sugar)
		publisher = events.Fanout{bus, redisPublisher}

		go func() {
			if err := redisPublisher.Subscribe(ctx, func(event *domain.Event) {
				bus.Publish(ctx, event)
			}); err != nil && !errors.Is(err, context.Canceled) {
				sugar.Errorw("redis event subscription terminated", "error", err)
			}
		}()
	}

	signaling := services.NewSignalingRegistry(services.SignalingConfig{
		SessionTTL:  cfg.Signaling.SessionTTL,
		PeerIdleTTL: cfg.Signaling.PeerIdleTTL,
	}, publisher, sugar)
	screenShares := services.NewScreenShareRegistry(services.ScreenShareConfig{
		IdleTimeout:   cfg.ScreenShare.IdleTimeout,
		ViewerTimeout: cfg.ScreenShare.ViewerTimeout,
	}, publisher, sugar)
	breakouts := services.NewBreakoutOrchestrator(publisher, sugar)
	whiteboards := services.NewWhiteboardLog(publisher, sugar)
	polling := services.NewPollingEngine(publisher, sugar)
	cachedPolling := services.NewCachedPollingEngine(polling, cfg.Polling.ResultsCacheTTL)
	defer cachedPolling.Stop()
	recordings := services.NewRecordingCoordinator(publisher, sugar)
	liveStreams := services.NewLiveStreamCoordinator(publisher, sugar)

	sweeper := services.NewSweeper(services.SweeperConfig{
		SignalingInterval:   cfg.Signaling.CleanupInterval,
		ScreenShareInterval: cfg.ScreenShare.CleanupInterval,
		RecordingInterval:   cfg.Recording.CleanupInterval,
		RecordingRetention:  cfg.Recording.RetentionDays,
	}, signaling, screenShares, recordings, sugar)

	wsFeed := feed.NewWebSocketFeed(bus, sugar)

	var observer *monitoring.MetricsObserver
	if collector != nil {
		sweeper.SetMetrics(collector)
		observer = monitoring.StartMetricsObserver(bus, collector, monitoring.SampleSources{
			Signaling:     signaling,
			Shares:        screenShares,
			ObserverCount: wsFeed.ObserverCount,
		}, 15*time.Second)
	}
	sweeper.Start(ctx)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:        cfg,
		Logger:        sugar,
		Signaling:     signaling,
		ScreenShares:  screenShares,
		Breakouts:     breakouts,
		Whiteboards:   whiteboards,
		Polling:       cachedPolling,
		Recordings:    recordings,
		LiveStreams:   liveStreams,
		HealthChecker: healthChecker,
		Collector:     collector,
		Feed:          wsFeed,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sugar.Infow("starting collaboration core", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server shutdown failed", "error", err)
	}
	sweeper.Stop()
	if observer != nil {
		observer.Stop()
	}
	bus.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			sugar.Errorw("redis close failed", "error", err)
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("tracer shutdown failed", "error", err)
	}
	sugar.Info("stopped")
}
