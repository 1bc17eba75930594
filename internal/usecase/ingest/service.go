package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	dombatch "github.com/hamburgerswang/fineTuningLab/internal/domain/batch"
	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
)

// Defaults for Config.
const (
	DefaultBatchSize = 10
	DefaultWorkers   = 4
)

// Config tunes a bulk load. Zero values select the defaults.
type Config struct {
	BatchSize int
	Workers   int
	// RatePerSecond bounds embedding calls. Zero disables limiting.
	RatePerSecond float64
	// FacilitySeparator joins list-valued facilities into the stored text.
	FacilitySeparator string
}

// Report summarizes a load.
type Report struct {
	dombatch.Summary
	Results  []dombatch.Result
	Tokens   int
	Duration time.Duration
}

// Service recreates the hotel index and fills it from source records.
type Service struct {
	writer  IndexWriter
	embed   domain.Embedder
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates an ingest service.
func New(writer IndexWriter, embed domain.Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.FacilitySeparator == "" {
		cfg.FacilitySeparator = "，"
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{writer: writer, embed: embed, cfg: cfg, limiter: limiter, logger: logger}
}

// Load drops and recreates the index, then embeds and writes records batch by batch.
// Failed batches are reported per record; only index provisioning and cancellation abort the load.
func (s *Service) Load(ctx context.Context, records []Record) (Report, error) {
	start := time.Now()
	if err := s.writer.Recreate(ctx); err != nil {
		return Report{}, fmt.Errorf("recreate index: %w", err)
	}

	results := make([]dombatch.Result, len(records))
	var (
		mu     sync.Mutex
		tokens int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for lo := 0; lo < len(records); lo += s.cfg.BatchSize {
		hi := min(lo+s.cfg.BatchSize, len(records))
		g.Go(func() error {
			used, err := s.loadBatch(gctx, records[lo:hi], lo, results[lo:hi])
			if err != nil {
				return err
			}
			mu.Lock()
			tokens += used
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		Summary:  dombatch.Summarize(results),
		Results:  results,
		Tokens:   tokens,
		Duration: time.Since(start),
	}
	s.logger.Info("hotel load finished",
		zap.Int("loaded", report.Loaded),
		zap.Int("failed", report.Failed),
		zap.Int("tokens", report.Tokens),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// loadBatch fills out with one result per record. It returns an error only on cancellation.
func (s *Service) loadBatch(ctx context.Context, batch []Record, offset int, out []dombatch.Result) (int, error) {
	docs := make([]hotelrepo.Document, 0, len(batch))
	pos := make([]int, 0, len(batch))
	var texts []string
	var textDoc []int

	for i := range batch {
		rec := &batch[i]
		if rec.HotelID == nil {
			out[i] = dombatch.NewError(offset+i, 0, fmt.Errorf("%w: record has no hotel_id", domain.ErrMalformedRecord))
			continue
		}
		name, address := rec.Tokens()
		docs = append(docs, hotelrepo.Document{
			Hotel:         rec.Hotel(s.cfg.FacilitySeparator),
			NameTokens:    name,
			AddressTokens: address,
		})
		pos = append(pos, i)
		// records without facilities are stored without a vector and never match vector search
		if text := docs[len(docs)-1].Hotel.Facilities; text != "" {
			texts = append(texts, text)
			textDoc = append(textDoc, len(docs)-1)
		}
	}
	if len(docs) == 0 {
		return 0, nil
	}

	fail := func(err error) {
		for _, i := range pos {
			out[i] = dombatch.NewError(offset+i, *batch[i].HotelID, err)
		}
		s.logger.Warn("hotel batch failed",
			zap.Int("offset", offset),
			zap.Int("size", len(batch)),
			zap.Error(err),
		)
	}

	var tokens int
	if len(texts) > 0 {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("wait for rate limiter: %w", err)
		}
		res, err := domain.EmbedAll(ctx, s.embed, texts)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			fail(fmt.Errorf("embed facilities: %w", err))
			return 0, nil
		}
		if len(res.Embeddings) != len(texts) {
			fail(fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingProviderError, len(res.Embeddings), len(texts)))
			return 0, nil
		}
		for j, d := range textDoc {
			docs[d].Vector = res.Embeddings[j]
		}
		tokens = res.TotalTokens
	}

	if err := s.writer.Put(ctx, docs); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		fail(fmt.Errorf("store hotels: %w", err))
		return tokens, nil
	}
	for _, i := range pos {
		out[i] = dombatch.NewOK(offset+i, *batch[i].HotelID)
	}
	s.logger.Debug("hotel batch stored", zap.Int("offset", offset), zap.Int("stored", len(docs)))
	return tokens, nil
}
