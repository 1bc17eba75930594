package hotelsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamburgerswang/fineTuningLab/internal/db"
	dbRedis "github.com/hamburgerswang/fineTuningLab/internal/db/redis"
	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
	healthuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/health"
	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDim        = 1024
)

// searchUseCase is the internal interface for the retrieval pipeline.
type searchUseCase interface {
	Execute(ctx context.Context, q query.Query, limit int) (searchuc.Outcome, error)
}

// Client is the hotel search SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts...)

	if len(cfg.addrs) == 0 {
		return nil, errors.New("hotelsearch: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("hotelsearch: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("hotelsearch: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	index := hotelrepo.DefaultIndex(cfg.vectorDim)
	if cfg.indexName != "" {
		index.Name = cfg.indexName
	}
	if cfg.keyPrefix != "" {
		index.KeyPrefix = cfg.keyPrefix
	}

	// keyword and filter queries work without an embedder
	var emb domain.Embedder = noopEmbedder{}
	var embHealth healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		a := &embedderAdapter{inner: cfg.embedder}
		emb, embHealth = a, a
	}

	searchSvc := searchuc.New(hotelrepo.New(store, index), emb, cfg.searchConfig())
	healthSvc := healthuc.New(store, hotelrepo.NewWriter(store, index), embHealth)

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search returns at most limit hotels for the query slots, best first.
// limit <= 0 returns an empty slice without touching Redis.
func (c *Client) Search(ctx context.Context, q Query, limit int) ([]Hotel, error) {
	res, err := c.SearchDetailed(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return res.Hotels, nil
}

// SearchDetailed is Search that also reports the strategy that served the query.
func (c *Client) SearchDetailed(ctx context.Context, q Query, limit int) (res Result, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err, "strategy", res.Strategy, "hits", len(res.Hotels))
	}()

	normalized, err := query.Normalize(query.Raw(q))
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	out, err := c.searchSvc.Execute(ctx, normalized, limit)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	res = Result{Hotels: fromInternalHotels(out.Hotels), Strategy: string(out.Strategy)}
	c.obs.observeHits(res.Strategy, len(res.Hotels))
	return res, nil
}
