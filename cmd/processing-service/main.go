package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/onboardflow/platform/pkg/common/config"
	"github.com/onboardflow/platform/pkg/common/database"
	"github.com/onboardflow/platform/pkg/common/kafka"
	"github.com/onboardflow/platform/pkg/common/logger"
	"github.com/onboardflow/platform/pkg/notification"
	"github.com/onboardflow/platform/pkg/observability/metrics"
	"github.com/onboardflow/platform/pkg/processing"
	"github.com/onboardflow/platform/pkg/vision"
)

func main() {
	_ = godotenv.Load()

	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres()

	repo := processing.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate processing tables")
	}

	analyzer, err := vision.NewClient(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to configure vision client")
	}

	mailer := notification.NewMailer(cfg)

	var events processing.EventPublisher
	if cfg.ProcessingEventsTopic != "" {
		producer := kafka.NewProducer(cfg.ProcessingEventsTopic)
		defer producer.Close()
		events = producer
	}

	cache := database.GetRedis()
	defer database.CloseRedis()

	svc := processing.NewService(repo, analyzer, mailer, events, cache, cfg.ResultCacheTTL)
	handler := processing.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Processing Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Processing Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Processing Service stopped")
}
