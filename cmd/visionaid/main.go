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

	"github.com/Sunshower1260/VisionAid/internal/config"
	delivery "github.com/Sunshower1260/VisionAid/internal/delivery/http"
	"github.com/Sunshower1260/VisionAid/internal/infrastructure/postgres"
	"github.com/Sunshower1260/VisionAid/internal/infrastructure/redis"
	"github.com/Sunshower1260/VisionAid/internal/logging"
	"github.com/Sunshower1260/VisionAid/internal/observability"
	"github.com/Sunshower1260/VisionAid/internal/scheduler"
	"github.com/Sunshower1260/VisionAid/internal/usecase"
	"github.com/Sunshower1260/VisionAid/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Загружаем .env (опционально)
	envErr := godotenv.Load()

	// 1. Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file loaded, relying on environment variables")
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	// 2. Подключение к базе данных (PostgreSQL)
	pgRepo, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "err", err)
		os.Exit(1)
	}
	defer pgRepo.Close()

	// 3. Подключение к Redis
	redisRepo, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisRepo.Close()

	metrics, err := observability.NewCollector(nil)
	if err != nil {
		logger.Error("failed to register metrics", "err", err)
		os.Exit(1)
	}

	// 4. Сервисы. pgRepo реализует репозитории волонтеров, вызовов и семьи.
	volunteerService := usecase.NewVolunteerService(pgRepo, pgRepo, redisRepo, redisRepo, cfg.StoreTimeout)
	volunteerService.Metrics = metrics
	volunteerService.Logger = logger
	helpRequestService := usecase.NewHelpRequestService(pgRepo, cfg.StoreTimeout, cfg.HelpRequestTTL)
	familyService := usecase.NewFamilyService(pgRepo, cfg.StoreTimeout)

	// 5. Фоновые задачи: доставка уведомлений и истечение вызовов
	w := worker.New(redisRepo, cfg.NotifyWebhookURL, cfg.WorkerMaxRetries)
	w.Logger = logger
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		w.Start(workerCtx)
		close(workerDone)
	}()

	sched, err := scheduler.New(cfg.ExpireSchedule, helpRequestService, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "err", err)
		os.Exit(1)
	}
	sched.Start()

	// 6. HTTP-обработчик; репозитории выступают "Pingers" для health-check
	handler := delivery.NewHandler(volunteerService, helpRequestService, familyService, pgRepo, redisRepo, cfg.APIKey)
	handler.Metrics = metrics
	handler.Logger = logger

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.InitRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	// Дожидаемся фоновой записи вызовов, затем останавливаем воркер и планировщик.
	volunteerService.Wait()
	sched.Stop(shutdownCtx)
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
	}

	logger.Info("server exiting")
}
