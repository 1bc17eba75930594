package hotel

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hamburgerswang/fineTuningLab/internal/db"
	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	domhotel "github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
)

// Index describes the FT index holding hotel hashes.
// Language drives tokenization of TEXT fields. Empty keeps the server default, which splits
// pre-tokenized _name/_address values on whitespace; "chinese" segments raw CJK text instead.
// Scorer overrides the server's default text scorer (e.g. BM25STD).
type Index struct {
	Name      string
	KeyPrefix string
	Language  string
	VectorDim int
	Distance  db.DistanceMetric
	HNSW      HNSWConfig
	Scorer    string
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// DefaultIndex returns the index layout used by the loader and the search service.
func DefaultIndex(vectorDim int) Index {
	return Index{
		Name:      "hotels",
		KeyPrefix: "hotel:",
		VectorDim: vectorDim,
		Distance:  db.DistanceCosine,
		HNSW:      HNSWConfig{M: 32, EFConstruct: 400},
	}
}

// Key returns the hash key of a hotel.
func (ix Index) Key(id int64) string {
	return ix.KeyPrefix + strconv.FormatInt(id, 10)
}

// buildIndex creates the FT schema for hotel hashes.
func buildIndex(ix Index) (*db.IndexDefinition, error) {
	distance := ix.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}
	b := db.NewIndex(ix.Name).
		Prefix(ix.KeyPrefix).
		Language(ix.Language).
		SortableNumeric(domhotel.FieldID).
		TagWithOpts(domhotel.FieldType, "|", true).
		SortableNumeric(domhotel.FieldPrice).
		SortableNumeric(domhotel.FieldRating).
		TextNoStem(domhotel.FieldNameTokens).
		TextNoStem(domhotel.FieldAddressTokens).
		Text(domhotel.FieldFacilities).
		VectorHNSW(domhotel.FieldVector, ix.VectorDim, distance, ix.HNSW.M, ix.HNSW.EFConstruct)
	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build hotel index: %w", err)
	}
	return def, nil
}

// indexStore is the consumer interface for provisioning and writing hotels (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexDocCount(ctx context.Context, name string) (int, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
}

// Writer provisions the hotel index and stores hotel documents.
type Writer struct {
	store indexStore
	index Index
}

// NewWriter creates a hotel writer for the given index.
func NewWriter(s indexStore, index Index) *Writer {
	return &Writer{store: s, index: index}
}

// Recreate drops the index together with its hashes and creates it again.
func (w *Writer) Recreate(ctx context.Context) error {
	def, err := buildIndex(w.index)
	if err != nil {
		return err
	}
	if err := w.store.DropIndex(ctx, w.index.Name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", w.index.Name, err)
	}
	if err := w.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", w.index.Name, err)
	}
	return nil
}

// Ensure creates the index unless it already exists.
func (w *Writer) Ensure(ctx context.Context) error {
	def, err := buildIndex(w.index)
	if err != nil {
		return err
	}
	err = w.store.CreateIndex(ctx, def)
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", w.index.Name, err)
	}
	return nil
}

// Put writes hotel documents in one pipelined round trip.
func (w *Writer) Put(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		fields, err := buildHashFields(&docs[i])
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		id, _ := docs[i].Hotel.ID()
		items = append(items, db.HashSetItem{Key: w.index.Key(id), Fields: fields})
	}
	if err := w.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write %d hotels: %w", len(items), err)
	}
	return nil
}

// Count returns the number of indexed hotels, or domain.ErrIndexNotReady when the index is missing.
func (w *Writer) Count(ctx context.Context) (int, error) {
	n, err := w.store.IndexDocCount(ctx, w.index.Name)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, domain.ErrIndexNotReady
		}
		return 0, fmt.Errorf("count %s: %w", w.index.Name, err)
	}
	return n, nil
}

// Ready reports domain.ErrIndexNotReady until the index exists.
func (w *Writer) Ready(ctx context.Context) error {
	ok, err := w.store.IndexExists(ctx, w.index.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", w.index.Name, err)
	}
	if !ok {
		return domain.ErrIndexNotReady
	}
	return nil
}
