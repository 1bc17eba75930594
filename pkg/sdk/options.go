package hotelsearch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder

	indexName string
	keyPrefix string
	vectorDim int

	rrfK      int
	overFetch int
	maxLimit  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the Redis instance holding the hotel index.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the query embedding provider.
// Required for facilities queries; name, address and filter-only queries work without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithIndex selects the FT index and hash key prefix. Defaults: "hotels", "hotel:".
func WithIndex(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
		c.keyPrefix = keyPrefix
	})
}

// WithVectorDimensions sets the expected facilities vector size.
// Defaults to 1024 (text-embedding-v3).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDim = dim
	})
}

// WithFusion overrides the RRF constant (default 60) and the over-fetch added to each limit (default 10).
func WithFusion(k, overFetch int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rrfK = k
		c.overFetch = overFetch
	})
}

// WithMaxLimit clamps the per-call limit to n. By default the caller's limit is honored as is;
// n <= 0 restores that.
func WithMaxLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		if n <= 0 {
			n = noLimitClamp
		}
		c.maxLimit = n
	})
}

func newClientConfig(opts ...Option) *clientConfig {
	cfg := &clientConfig{vectorDim: defaultVectorDim, maxLimit: noLimitClamp}
	for _, o := range opts {
		o.apply(cfg)
	}
	return cfg
}

// noLimitClamp disables the search service's limit clamp.
const noLimitClamp = -1

func (c *clientConfig) searchConfig() searchuc.Config {
	return searchuc.Config{
		RRFK:      c.rrfK,
		OverFetch: c.overFetch,
		MaxLimit:  c.maxLimit,
	}
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
