package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/strategy"
	"github.com/hamburgerswang/fineTuningLab/internal/logger"
	"github.com/hamburgerswang/fineTuningLab/internal/metrics"
)

// Defaults for Config.
const (
	DefaultOverFetch = 10
	DefaultMaxLimit  = 50
)

// Config tunes the retrieval pipeline. Zero values select the defaults.
type Config struct {
	// RRFK is the fusion constant.
	RRFK int
	// OverFetch is added to the caller's limit when querying the store.
	OverFetch int
	// MaxLimit clamps the caller's limit. Negative disables clamping.
	MaxLimit int
	Strategy strategy.Options
}

func (c Config) withDefaults() Config {
	if c.RRFK <= 0 {
		c.RRFK = DefaultRRFK
	}
	if c.OverFetch <= 0 {
		c.OverFetch = DefaultOverFetch
	}
	if c.MaxLimit == 0 {
		c.MaxLimit = DefaultMaxLimit
	}
	if c.Strategy.FacilityPrefix == "" && c.Strategy.FacilitySeparator == "" {
		c.Strategy = strategy.DefaultOptions()
	}
	return c
}

// Service runs the hotel retrieval pipeline. It holds no per-query state and is safe for concurrent use.
type Service struct {
	repo  Repository
	embed Embedder
	cfg   Config
}

// New creates a search service.
func New(repo Repository, embed Embedder, cfg Config) *Service {
	return &Service{repo: repo, embed: embed, cfg: cfg.withDefaults()}
}

// Outcome is a completed search with its diagnostics.
type Outcome struct {
	Query    query.Query
	Strategy strategy.Kind
	Hotels   []hotel.Hotel
	// Fetched is the number of candidates the store returned before post-filtering.
	Fetched int
}

// Search normalizes raw slots and returns at most limit hotels.
func (s *Service) Search(ctx context.Context, raw query.Raw, limit int) ([]hotel.Hotel, error) {
	q, err := query.Normalize(raw)
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return out.Hotels, nil
}

// Execute runs predicate construction, strategy selection, retrieval, fusion and post-filtering
// for an already-normalized query. limit <= 0 yields an empty result without contacting the store.
func (s *Service) Execute(ctx context.Context, q query.Query, limit int) (Outcome, error) {
	strat := strategy.Select(q, s.cfg.Strategy)
	out := Outcome{Query: q, Strategy: strat.Kind(), Hotels: []hotel.Hotel{}}
	if limit <= 0 {
		return out, nil
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	start := time.Now()
	hotels, fetched, err := s.execute(ctx, q, strat, limit)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(strat.Kind()), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(strat.Kind())).Observe(time.Since(start).Seconds())
	if err != nil {
		return Outcome{}, err
	}
	metrics.SearchResults.WithLabelValues(string(strat.Kind())).Observe(float64(len(hotels)))
	metrics.SearchPostFilterDropped.Add(float64(fetched - len(hotels)))

	logger.FromContext(ctx).Debug("hotel search",
		zap.String("strategy", string(strat.Kind())),
		zap.Strings("slots", q.SlotNames()),
		zap.Int("limit", limit),
		zap.Int("fetched", fetched),
		zap.Int("returned", len(hotels)),
	)

	out.Hotels = hotels
	out.Fetched = fetched
	return out, nil
}

func (s *Service) execute(
	ctx context.Context, q query.Query, strat strategy.Strategy, limit int,
) ([]hotel.Hotel, int, error) {
	pred, err := BuildPredicate(q)
	if err != nil {
		return nil, 0, err
	}

	list, err := s.retrieve(ctx, strat, pred, limit+s.cfg.OverFetch)
	if err != nil {
		return nil, 0, domain.NewRetrievalError(string(strat.Kind()), err)
	}

	ranked, err := FuseRRF([][]hotel.Hotel{list}, s.cfg.RRFK)
	if err != nil {
		return nil, 0, fmt.Errorf("fuse %s results: %w", strat.Kind(), err)
	}

	return postFilter(q, Hotels(ranked), limit), len(list), nil
}

// retrieve issues exactly one store call for the selected strategy.
func (s *Service) retrieve(
	ctx context.Context, strat strategy.Strategy, pred filter.Expression, n int,
) ([]hotel.Hotel, error) {
	switch strat.Kind() {
	case strategy.Vector:
		vec, err := s.vectorize(ctx, strat.Text())
		if err != nil {
			return nil, err
		}
		res, err := s.repo.SearchVector(ctx, vec, pred, n)
		if err != nil {
			return nil, fmt.Errorf("search vector: %w", err)
		}
		return res, nil
	case strategy.NameKeyword, strategy.AddressKeyword:
		res, err := s.repo.SearchKeyword(ctx, strat.Text(), strat.Field(), pred, n)
		if err != nil {
			return nil, fmt.Errorf("search keyword %s: %w", strat.Field(), err)
		}
		return res, nil
	case strategy.Structured:
		res, err := s.repo.Fetch(ctx, pred, n)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		return res, nil
	}
	return nil, fmt.Errorf("unsupported strategy: %s", strat.Kind())
}

var errNoEmbedder = errors.New("no embedder configured")

func (s *Service) vectorize(ctx context.Context, text string) ([]float32, error) {
	if s.embed == nil {
		return nil, errNoEmbedder
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Embedding, nil
}
