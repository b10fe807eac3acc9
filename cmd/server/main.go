package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/car-pooling/internal/config"
	"github.com/iliyamo/car-pooling/internal/database"
	"github.com/iliyamo/car-pooling/internal/handler"
	"github.com/iliyamo/car-pooling/internal/jobs"
	"github.com/iliyamo/car-pooling/internal/logging"
	"github.com/iliyamo/car-pooling/internal/metrics"
	"github.com/iliyamo/car-pooling/internal/middleware"
	"github.com/iliyamo/car-pooling/internal/pooling"
	"github.com/iliyamo/car-pooling/internal/queue"
	"github.com/iliyamo/car-pooling/internal/repository"
	"github.com/iliyamo/car-pooling/internal/router"
	"github.com/iliyamo/car-pooling/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg := config.Load() // Load environment config
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := pooling.NewEngine(cfg.MinSeats, cfg.MaxSeats)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	// Journey events go to RabbitMQ when enabled.
	evCfg := config.LoadEventsConfig()
	var publisher service.EventPublisher = service.NopPublisher{}
	if evCfg.Enabled {
		amqpPub := service.NewAMQPPublisher(evCfg.URL, evCfg.Queue)
		defer func() { _ = amqpPub.Close() }()
		// Requests only enqueue; a single goroutine talks to the broker.
		async := service.NewAsyncPublisher(amqpPub, evCfg.Buffer, logger)
		defer async.Close()
		publisher = async
		logger.Info("publishing journey events", zap.String("queue", evCfg.Queue))
	}

	if evCfg.ConsumerEnabled {
		consumer := &queue.Consumer{URL: evCfg.URL, Queue: evCfg.Queue, LogDir: evCfg.LogDir, Logger: logger.Named("events")}

		dbCfg := config.LoadDatabaseConfig()
		if dbCfg.Enabled() {
			db, err := database.Open(ctx, dbCfg)
			if err != nil {
				logger.Fatal("open journey database", zap.Error(err))
			}
			defer db.Close()
			repo := repository.NewJourneyRepo(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				logger.Fatal("create journey_events table", zap.Error(err))
			}
			consumer.Journal = repo
		}

		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("journey consumer stopped", zap.Error(err))
			}
		}()
	}

	svc := service.NewPoolingService(engine, publisher, recorder, logger)

	audit := jobs.NewAuditJob(engine, recorder, logger)
	scheduler, err := audit.Schedule(cfg.AuditSchedule)
	if err != nil {
		logger.Fatal("schedule audit", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// The limiter is wired only when Redis answers; a nil client must not
	// reach it as a non-nil interface.
	var scripter redis.Scripter
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled {
		if rdb := config.NewRedisClient(ctx); rdb != nil {
			defer rdb.Close()
			scripter = rdb
		} else {
			logger.Warn("redis unavailable, rate limiting disabled")
		}
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, handler.Health(svc, uint64(cfg.MaxHeapMB)<<20), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.RegisterPooling(e, handler.NewPoolingHandler(svc), middleware.NewTokenBucket(rlCfg, scripter, logger))

	addr := ":" + cfg.Port // Address string with port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
		zap.Int("min_seats", cfg.MinSeats), zap.Int("max_seats", cfg.MaxSeats))

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
