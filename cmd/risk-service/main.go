package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/common/kafka"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/server/middleware"
	"github.com/synaptica-ai/cvdrisk/pkg/serving"
)

func main() {
	logger.Init("risk-service")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service, err := serving.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialise risk scorer")
	}

	if cfg.ModelEventsEnabled && cfg.ScoringStrategy == risk.StrategyClassifier {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ModelEventsTopic, cfg.KafkaGroupID)
		defer consumer.Close()
		go func() {
			logger.Log.WithField("topic", cfg.ModelEventsTopic).Info("Listening for model events")
			if err := consumer.Consume(ctx, service.HandleModelEvent); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.WithError(err).Error("Model event consumer stopped")
			}
		}()
	}

	router := mux.NewRouter()
	serving.NewHandler(service).Register(router)

	var handler http.Handler = router
	handler = middleware.BodyLimit(cfg.MaxRequestBody)(handler)
	handler = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":     cfg.ServerHost,
			"port":     cfg.ServerPort,
			"strategy": cfg.ScoringStrategy,
		}).Info("Risk Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Risk Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close PostgreSQL")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close Redis")
	}

	logger.Log.Info("Risk Service stopped")
}
