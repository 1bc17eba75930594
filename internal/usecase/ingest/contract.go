package ingest

import (
	"context"

	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
)

// IndexWriter provisions the hotel index and stores documents.
type IndexWriter interface {
	Recreate(ctx context.Context) error
	Put(ctx context.Context, docs []hotelrepo.Document) error
}
