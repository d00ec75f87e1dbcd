package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/smilecare/scheduler-api/internal/config"
	appointmentHandler "github.com/smilecare/scheduler-api/internal/handler/appointment"
	availabilityHandler "github.com/smilecare/scheduler-api/internal/handler/availability"
	healthHandler "github.com/smilecare/scheduler-api/internal/handler/health"
	"github.com/smilecare/scheduler-api/internal/middleware"
	"github.com/smilecare/scheduler-api/internal/repository/postgres"
	"github.com/smilecare/scheduler-api/internal/router"
	appointmentService "github.com/smilecare/scheduler-api/internal/service/appointment"
	availabilityService "github.com/smilecare/scheduler-api/internal/service/availability"
	"github.com/smilecare/scheduler-api/pkg/clock"
	"github.com/smilecare/scheduler-api/pkg/logger"
	"github.com/smilecare/scheduler-api/pkg/metrics"
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
	clk := clock.System()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	dentistRepo := postgres.NewDentistRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	dispatchRepo := postgres.NewDispatchRepository(db)

	// Services
	availabilitySvc := availabilityService.NewService(
		appointmentRepo, scheduleRepo, dentistRepo, serviceRepo,
		cfg.Clinic.DefaultSlotMinutes, clk,
	)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, dispatchRepo, patientRepo, dentistRepo,
		clk, appLogger,
	)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	apiMetrics := metrics.NewMetrics("scheduler", "api")
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, apiMetrics)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(authMiddleware, appointmentH, availabilityH, healthH, router.Config{
		RateLimit:  rate.Limit(100),
		RateBurst:  200,
		Timeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig: middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
