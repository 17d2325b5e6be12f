package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	goredis "github.com/redis/go-redis/v9"

	"rideengine/internal/app"
	"rideengine/internal/config"
	"rideengine/internal/handler"
	"rideengine/internal/logger"
	"rideengine/internal/middleware"
	internalRedis "rideengine/internal/redis"
	"rideengine/internal/repository"
	"rideengine/internal/repository/memory"
	"rideengine/internal/repository/postgres"
	"rideengine/internal/service"
)

const serviceName = "ride-engine"

// stores is the persistence the services run on.
type stores struct {
	rides         repository.RideRepository
	rejections    repository.RejectionRepository
	cancellations repository.CancellationRepository
	uow           repository.UnitOfWork
	markers       repository.GeoMarkerRepository
	close         func()
}

func main() {
	log := logger.New(serviceName)

	cfg, err := config.Load()
	if err != nil {
		fatal(log, "config_load", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first so the database and redis clients are instrumented.
	nrApp, err := app.NewNewRelic(cfg.NewRelic)
	if err != nil {
		logger.Error(ctx, log, "newrelic_init", "failed to initialize New Relic, continuing without it", err)
	} else if nrApp != nil {
		logger.Info(ctx, log, "newrelic_init", "New Relic enabled", "app", cfg.NewRelic.AppName)
	}

	st, err := openStores(ctx, cfg, nrApp, log)
	if err != nil {
		fatal(log, "storage_init", err)
	}
	defer st.close()

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			fatal(log, "redis_init", err)
		}
		defer redisClient.Close()
		logger.Info(ctx, log, "redis_init", "connected to redis", "addr", cfg.Redis.Addr)
	}

	events, closeEvents, err := app.NewEventPublisher(ctx, cfg.RabbitMQ, log)
	if err != nil {
		fatal(log, "rabbitmq_init", err)
	}
	defer closeEvents()

	// Marker outbox: every sink gets every ride request pickup point.
	sinks := []service.MarkerSink{{Name: "postgres", Repo: st.markers}}
	var (
		heatmap     *service.HeatmapService
		idempotency middleware.IdempotencyStore
	)
	if redisClient != nil {
		heatmapStore := internalRedis.NewHeatmapStore(redisClient)
		sinks = append(sinks, service.MarkerSink{Name: "redis", Repo: heatmapStore})
		heatmap = service.NewHeatmapService(heatmapStore, cfg.Markers.GeohashPrecision)
		idempotency = internalRedis.NewIdempotencyStore(redisClient)
	}
	dispatcher := service.NewMarkerDispatcher(log, cfg.Markers.QueueSize, cfg.Markers.WriteTimeout, sinks...)
	dispatcher.Start()

	rideService := service.NewRideService(st.rides, st.rejections, st.cancellations, st.uow,
		service.WithLocation(cfg.Pricing.Location),
		service.WithMarkerPublisher(dispatcher),
		service.WithEventPublisher(events),
		service.WithLogger(log),
	)

	router := app.NewRouter(app.RouterDeps{
		RideHandler: handler.NewRideHandler(rideService, log),
		HubHandler:  handler.NewHubHandler(rideService, heatmap, log),
		Idempotency: idempotency,
		NewRelicApp: nrApp,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info(context.Background(), log, "server_start", "starting server", "port", cfg.Server.Port, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server_listen", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	logger.Info(shutdownCtx, log, "server_shutdown", "shutting down server")

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, log, "server_shutdown", "server forced to shutdown", err)
	}
	// Drain markers after the last request so none is lost to shutdown.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, log, "geo_marker_drain", "marker queue not drained", err)
	}
	delivered, dropped, failed := dispatcher.Stats()
	logger.Info(shutdownCtx, log, "server_shutdown", "server exited",
		"markers_delivered", delivered,
		"markers_dropped", dropped,
		"markers_failed", failed,
	)
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
}

func openStores(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application, log *slog.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn(ctx, log, "storage_init", "using in-memory storage, data is lost on restart")
		mem := memory.NewStore()
		return &stores{
			rides:         mem.Rides(),
			rejections:    mem.Rejections(),
			cancellations: mem.Cancellations(),
			uow:           mem.UnitOfWork(),
			markers:       mem.GeoMarkers(),
			close:         func() {},
		}, nil
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, log, "storage_init", "connected to postgres", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	return &stores{
		rides:         postgres.NewRideRepository(db),
		rejections:    postgres.NewRejectionRepository(db),
		cancellations: postgres.NewCancellationRepository(db),
		uow:           postgres.NewUnitOfWork(db),
		markers:       postgres.NewGeoMarkerRepository(db),
		close:         func() { _ = db.Close() },
	}, nil
}

func fatal(log *slog.Logger, action string, err error) {
	logger.Error(context.Background(), log, action, "fatal startup error", err)
	os.Exit(1)
}
