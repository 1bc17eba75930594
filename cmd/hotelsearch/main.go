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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hamburgerswang/fineTuningLab/internal/bootstrap"
	"github.com/hamburgerswang/fineTuningLab/internal/config"
	logpkg "github.com/hamburgerswang/fineTuningLab/internal/logger"
	"github.com/hamburgerswang/fineTuningLab/internal/metrics"
	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
	chiTransport "github.com/hamburgerswang/fineTuningLab/internal/transport/chi"
	healthuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/health"
	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
	"github.com/hamburgerswang/fineTuningLab/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hotel search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Index.Name),
	)

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := bootstrap.Embedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.CacheEnabled()),
	)

	index := bootstrap.HotelIndex(cfg)
	writer := hotelrepo.NewWriter(store, index)
	if err := writer.Ensure(ctx); err != nil {
		// search fails until the index exists; health reports it
		logger.Warn("Hotel index could not be created", zap.String("index", index.Name), zap.Error(err))
	} else if n, err := writer.Count(ctx); err != nil {
		logger.Warn("Hotel index not ready", zap.String("index", index.Name), zap.Error(err))
	} else if n == 0 {
		logger.Warn("Hotel index is empty, run hotelload", zap.String("index", index.Name))
	} else {
		logger.Info("Hotel index ready", zap.String("index", index.Name), zap.Int("hotels", n))
	}

	searchSvc := searchuc.New(hotelrepo.New(store, index), embedder, bootstrap.SearchConfig(cfg.Search))
	healthSvc := healthuc.New(store, writer, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(searchSvc, healthSvc, cfg.Search.DefaultLimit, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
