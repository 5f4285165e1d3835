package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-TechService/internal/api"
	"github.com/m04kA/SMC-TechService/internal/api/handlers/health"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/config"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/memory"
	serviceRequestRepo "github.com/m04kA/SMC-TechService/internal/infra/storage/servicerequest"
	timeSlotRepo "github.com/m04kA/SMC-TechService/internal/infra/storage/timeslot"
	userServiceClient "github.com/m04kA/SMC-TechService/internal/integrations/userservice"
	serviceRequestsService "github.com/m04kA/SMC-TechService/internal/service/servicerequests"
	timeSlotsService "github.com/m04kA/SMC-TechService/internal/service/timeslots"
	cancelServiceRequestUC "github.com/m04kA/SMC-TechService/internal/usecase/cancel_service_request"
	createServiceRequestUC "github.com/m04kA/SMC-TechService/internal/usecase/create_service_request"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/metrics"
	"github.com/m04kA/SMC-TechService/pkg/ratelimit"
	"github.com/m04kA/SMC-TechService/pkg/tracing"
	"github.com/m04kA/SMC-TechService/pkg/txmanager"
)

const rateLimitPrefix = "techservice:ratelimit:create"

// storage репозитории и менеджер транзакций выбранного драйвера
type storage struct {
	slots     slotStore
	requests  requestStore
	txManager transactionManager
	pinger    health.Pinger
}

type transactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// slotStore и requestStore объединяют методы, нужные сервисам и use cases
type slotStore interface {
	timeSlotsService.SlotRepository
	serviceRequestsService.SlotRepository
}

type requestStore interface {
	serviceRequestsService.RequestRepository
	createServiceRequestUC.RequestRepository
	cancelServiceRequestUC.RequestRepository
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, path)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, configPath string) error {
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	log.Info("Starting SMC-TechService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	defer close(stopMetricsCh)

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Трассировка
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Metrics.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Failed to flush traces: %v", err)
		}
	}()

	// Хранилище
	var store storage
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, wrapped, err := openDatabase(ctx, cfg.Database, metricsCollector, stopMetricsCh, log)
		if err != nil {
			return err
		}
		defer db.Close()

		store = storage{
			slots:     timeSlotRepo.NewRepository(wrapped),
			requests:  serviceRequestRepo.NewRepository(wrapped),
			txManager: txmanager.NewTransactionManager(wrapped),
			pinger:    wrapped,
		}

	case config.DriverMemory:
		mem := memory.NewStore()
		store = storage{
			slots:     mem.TimeSlots(),
			requests:  mem.ServiceRequests(),
			txManager: mem,
		}
		log.Warn("Using in-memory storage, data is lost on restart")

	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	// Интеграционные клиенты
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)

	// Сервисы
	var slotMetrics timeSlotsService.Metrics
	if metricsCollector != nil {
		slotMetrics = metricsCollector
	}
	ledger := timeSlotsService.NewService(
		store.slots,
		store.txManager,
		&timeSlotsService.RealTimeProvider{},
		slotMetrics,
		log,
	)
	requestsSvc := serviceRequestsService.NewService(
		store.requests,
		store.slots,
		userClient,
		store.txManager,
		&serviceRequestsService.RealTimeProvider{},
		log,
	)

	// Use cases
	createServiceRequest := createServiceRequestUC.NewUseCase(
		ledger,
		store.requests,
		requestsSvc,
		store.txManager,
		&createServiceRequestUC.RealTimeProvider{},
		createServiceRequestUC.GlobalRand{},
		log,
	)
	cancelServiceRequest := cancelServiceRequestUC.NewUseCase(
		ledger,
		store.requests,
		requestsSvc,
		store.txManager,
		log,
	)

	// Ограничение частоты создания заявок
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		redisClient, err := ratelimit.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("Redis unavailable, rate limiting disabled: %v", err)
		} else {
			defer redisClient.Close()
			limiter = ratelimit.New(
				redisClient,
				cfg.RateLimit.Requests,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
				rateLimitPrefix,
			)
			log.Info("Rate limit enabled: %d requests per %ds", cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
		}
	}

	opts := api.Options{
		Authenticator: middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log),
		Metrics:       metricsCollector,
		Limiter:       limiter,
		DB:            store.pinger,
		Logger:        log,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
		opts.MetricsHandler = promhttp.Handler()
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	router := api.NewRouter(api.Services{
		TimeSlots:            ledger,
		ServiceRequests:      requestsSvc,
		CreateServiceRequest: createServiceRequest,
		CancelServiceRequest: cancelServiceRequest,
	}, opts)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received %s, shutting down server...", sig)
	case err := <-serverErr:
		log.Error("Server failed: %v", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}
