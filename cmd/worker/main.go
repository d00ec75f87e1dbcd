package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/smilecare/scheduler-api/internal/config"
	"github.com/smilecare/scheduler-api/internal/email"
	"github.com/smilecare/scheduler-api/internal/repository/postgres"
	"github.com/smilecare/scheduler-api/pkg/logger"
	redisbroker "github.com/smilecare/scheduler-api/pkg/messaging/redis"
	"github.com/smilecare/scheduler-api/pkg/metrics"
	"github.com/smilecare/scheduler-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appLogger := logger.NewLogger(nil)

	zl := log.Logger
	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	dispatchRepo := postgres.NewDispatchRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	emailSvc := email.NewSMTPService(cfg.SMTP)

	m := metrics.NewMetrics("scheduler", "dispatcher")

	dispatcher := worker.NewDispatcher(
		dispatchRepo,
		notificationRepo,
		emailSvc,
		broker,
		worker.DispatcherConfig{
			BatchSize:       cfg.Dispatcher.BatchSize,
			PollInterval:    cfg.Dispatcher.PollInterval,
			RetryAttempts:   cfg.Dispatcher.RetryAttempts,
			RetryDelay:      cfg.Dispatcher.RetryDelay,
			CleanupInterval: cfg.Dispatcher.CleanupInterval,
			Retention:       cfg.Dispatcher.Retention,
		},
		appLogger,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}
