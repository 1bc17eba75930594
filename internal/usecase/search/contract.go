package search

import (
	"context"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"
)

// Repository is the hotel store contract. Every call returns records carrying hotel.Projection.
type Repository interface {
	// Fetch enumerates records matching filters without a ranking signal.
	Fetch(ctx context.Context, filters filter.Expression, limit int) ([]hotel.Hotel, error)

	// SearchVector ranks records by similarity to vector.
	SearchVector(ctx context.Context, vector []float32, filters filter.Expression, limit int) ([]hotel.Hotel, error)

	// SearchKeyword ranks records by BM25 relevance of text against a tokenized field.
	SearchKeyword(
		ctx context.Context, text, field string, filters filter.Expression, limit int,
	) ([]hotel.Hotel, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
