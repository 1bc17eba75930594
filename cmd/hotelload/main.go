package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamburgerswang/fineTuningLab/internal/bootstrap"
	"github.com/hamburgerswang/fineTuningLab/internal/config"
	logpkg "github.com/hamburgerswang/fineTuningLab/internal/logger"
	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/usecase/ingest"
	"github.com/hamburgerswang/fineTuningLab/internal/version"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	source := flag.String("source", cfg.Loader.Source, "path of hotel.json")
	sourceURL := flag.String("url", cfg.Loader.SourceURL, "download URL used when -source does not exist")
	flag.Parse()

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hotel loader",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("source", *source),
		zap.String("index", cfg.Index.Name),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := ingest.Source{Path: *source, URL: *sourceURL, Logger: logger}.Read(ctx)
	if err != nil {
		logger.Fatal("Failed to read hotels", zap.Error(err))
	}
	logger.Info("Hotels read", zap.Int("records", len(records)))

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	defer store.Close()

	// facilities are embedded once per load; caching them would only fill Redis
	embedder := bootstrap.Embedder(cfg.Embedding, nil, logger)
	writer := hotelrepo.NewWriter(store, bootstrap.HotelIndex(cfg))

	svc := ingest.New(writer, embedder, ingest.Config{
		BatchSize:         cfg.Loader.BatchSize,
		Workers:           cfg.Loader.Workers,
		RatePerSecond:     cfg.Loader.RatePerSecond,
		FacilitySeparator: cfg.Search.FacilitySeparator,
	}, logger)

	report, err := svc.Load(ctx, records)
	if err != nil {
		logger.Fatal("Hotel load aborted", zap.Error(err))
	}

	for _, r := range report.Results {
		if r.Err() != nil {
			logger.Warn("Hotel not loaded",
				zap.Int("pos", r.Pos()),
				zap.Int64("hotel_id", r.HotelID()),
				zap.Error(r.Err()),
			)
		}
	}

	if n, err := writer.Count(ctx); err == nil {
		logger.Info("Hotel index populated", zap.Int("indexed", n))
	}
	if report.Failed > 0 {
		logger.Error("Hotel load finished with failures",
			zap.Int("loaded", report.Loaded),
			zap.Int("failed", report.Failed),
		)
		return 1
	}
	return 0
}
