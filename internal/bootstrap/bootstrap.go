// Package bootstrap assembles the store, embedder chain and index layout shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamburgerswang/fineTuningLab/internal/config"
	"github.com/hamburgerswang/fineTuningLab/internal/db"
	dbRedis "github.com/hamburgerswang/fineTuningLab/internal/db/redis"
	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/strategy"
	"github.com/hamburgerswang/fineTuningLab/internal/metrics"
	"github.com/hamburgerswang/fineTuningLab/internal/repository/embcache"
	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
	openaiEmb "github.com/hamburgerswang/fineTuningLab/internal/transport/openai"
	embeddinguc "github.com/hamburgerswang/fineTuningLab/internal/usecase/embedding"
	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
)

// OpenStore connects to Redis and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	return store, nil
}

// HotelIndex maps the index settings onto the stored layout.
func HotelIndex(cfg config.Config) hotelrepo.Index {
	ix := hotelrepo.DefaultIndex(cfg.Embedding.Dimensions)
	ix.Name = cfg.Index.Name
	ix.KeyPrefix = cfg.Index.KeyPrefix
	ix.Language = cfg.Index.Language
	ix.Distance = db.DistanceMetric(cfg.Index.Distance)
	ix.Scorer = cfg.Index.Scorer
	ix.HNSW = hotelrepo.HNSWConfig{M: cfg.Index.HNSWM, EFConstruct: cfg.Index.HNSWEFConstruct}
	return ix
}

// SearchConfig maps the search settings onto the retrieval pipeline.
func SearchConfig(cfg config.SearchConfig) searchuc.Config {
	return searchuc.Config{
		RRFK:      cfg.RRFK,
		OverFetch: cfg.OverFetch,
		MaxLimit:  cfg.MaxLimit,
		Strategy: strategy.Options{
			FacilityPrefix:    cfg.FacilityPrefix,
			FacilitySeparator: cfg.FacilitySeparator,
		},
	}
}

// Embedder assembles the decorator chain: OpenAI-compatible provider -> Redis cache -> Instrumented.
// kv may be nil, which disables the cache.
func Embedder(cfg config.EmbeddingConfig, kv db.KVStore, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		MaxBatch:   cfg.MaxBatch,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv != nil && cfg.CacheEnabled() {
		ttl := time.Duration(cfg.CacheTTLSec) * time.Second
		embedder = embcache.New(base, kv, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Provider, cfg.Model,
		embeddinguc.Limits{
			Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
			Dimensions: cfg.Dimensions,
		},
		logger,
	)
}
