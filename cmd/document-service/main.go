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

	"github.com/docstream-ai/docstream/pkg/common/config"
	"github.com/docstream-ai/docstream/pkg/common/database"
	"github.com/docstream-ai/docstream/pkg/common/kafka"
	"github.com/docstream-ai/docstream/pkg/common/logger"
	"github.com/docstream-ai/docstream/pkg/common/middleware"
	"github.com/docstream-ai/docstream/pkg/documents"
	"github.com/docstream-ai/docstream/pkg/observability/metrics"
	"github.com/docstream-ai/docstream/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	repo := documents.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate documents table")
	}

	blobs, err := storage.NewGateway(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to create storage gateway")
	}

	var events documents.EventPublisher
	if cfg.DocumentEventsTopic != "" {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.DocumentEventsTopic)
		defer producer.Close()
		events = producer
	}

	redisClient := database.NewRedis(cfg)
	defer database.CloseRedis(redisClient)
	cache := documents.NewStatusCache(redisClient, cfg.StatusCacheTTL)

	svc := documents.NewService(repo, blobs, events)

	worker, err := documents.NewWorker(repo, blobs, events, cfg.ExtractionWorkers)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to create extraction worker pool")
	}

	handler := documents.NewHTTPHandler(svc, worker, cache)

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sqlDB, dbErr := db.DB()
		if dbErr == nil {
			dbErr = sqlDB.PingContext(ctx)
		}
		if dbErr != nil || !blobs.IsAvailable(ctx) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"connected","storage":"connected"}`))
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
		}).Info("Document Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Document Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	// Let in-flight extraction tasks finish before the DB handle closes.
	worker.Release()

	logger.Log.Info("Document Service stopped")
}
