package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/consumers"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/events"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/handler"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/repository"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/service"
	"github.com/shiftclock/shiftclock-backend/pkg/config"
	"github.com/shiftclock/shiftclock-backend/pkg/database"
	"github.com/shiftclock/shiftclock-backend/pkg/httputil"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/shiftclock/shiftclock-backend/pkg/messaging"
)

const serviceName = "timesheet-service"

func main() {
	// Load configuration, strictly outside development
	load := config.Load
	if config.IsProductionLike() {
		load = config.LoadWithValidation
	}
	cfg, err := load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Str("timezone", cfg.Timesheet.Timezone).Msg("starting Timesheet Service")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
		log.Fatal().Err(err).Msg("failed to declare dead letter queue")
	}

	publisher, err := events.NewTimesheetEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	eventRepo := repository.NewTimeEventRepository(db)
	timesheetService := service.NewTimesheetService(eventRepo, publisher, cfg.Timesheet, log)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService, log)

	kioskConsumer, err := consumers.NewKioskEventConsumer(rmq, timesheetService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kiosk event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := kioskConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start kiosk event consumer")
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           int(cfg.CORS.MaxAge.Seconds()),
	}))
	r.Use(httputil.TenantMiddleware) // /health is exempt
	r.Use(httputil.UserContext)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	r.Mount("/api/v1/timesheet", timesheetHandler.Routes())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// stops the kiosk consumer
	cancel()

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
