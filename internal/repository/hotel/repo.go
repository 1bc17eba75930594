package hotel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/hamburgerswang/fineTuningLab/internal/db"
	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	domhotel "github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"
)

// searchStore is the consumer interface for hotel retrieval (ISP).
type searchStore interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository over a Redis FT index.
type Repo struct {
	store  searchStore
	index  string
	scorer string
}

// New creates a hotel repository reading from the given index.
func New(s searchStore, index Index) *Repo {
	return &Repo{store: s, index: index.Name, scorer: index.Scorer}
}

// Fetch enumerates hotels matching filters in hotel_id order.
func (r *Repo) Fetch(ctx context.Context, filters filter.Expression, limit int) ([]domhotel.Hotel, error) {
	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.index,
		Filters:      filters,
		Limit:        limit,
		SortBy:       domhotel.FieldID,
		ReturnFields: domhotel.Projection,
	})
	if err != nil {
		return nil, r.wrap("fetch", err)
	}
	return toHotels(sr)
}

// SearchVector returns hotels nearest to vector.
func (r *Repo) SearchVector(
	ctx context.Context, vector []float32, filters filter.Expression, limit int,
) ([]domhotel.Hotel, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.index,
		VectorField:  domhotel.FieldVector,
		Filters:      filters,
		Vector:       vector,
		K:            limit,
		ReturnFields: domhotel.Projection,
	})
	if err != nil {
		return nil, r.wrap("search knn", err)
	}
	return toHotels(sr)
}

// SearchKeyword returns hotels ranked by BM25 relevance of the terms in text.
// Terms split on whitespace and on '-', which the default TEXT tokenizer also treats
// as a separator at index time. Text without terms matches nothing.
func (r *Repo) SearchKeyword(
	ctx context.Context, text, field string, filters filter.Expression, limit int,
) ([]domhotel.Hotel, error) {
	terms := keywordTerms(text)
	if len(terms) == 0 {
		return []domhotel.Hotel{}, nil
	}
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.index,
		Field:        field,
		Terms:        terms,
		Filters:      filters,
		Limit:        limit,
		Scorer:       r.scorer,
		ReturnFields: domhotel.Projection,
	})
	if err != nil {
		return nil, r.wrap("search bm25 "+field, err)
	}
	return toHotels(sr)
}

func keywordTerms(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
}

// wrap maps a missing index to domain.ErrIndexNotReady.
func (r *Repo) wrap(op string, err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%s %s: %w", op, r.index, domain.ErrIndexNotReady)
	}
	return fmt.Errorf("%s %s: %w", op, r.index, err)
}

// toHotels converts entries in server order. An empty result is an empty, non-nil slice.
func toHotels(sr *db.SearchResult) ([]domhotel.Hotel, error) {
	if sr == nil {
		return []domhotel.Hotel{}, nil
	}
	out := make([]domhotel.Hotel, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		h, err := parseHotel(entry.Key, entry.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}
