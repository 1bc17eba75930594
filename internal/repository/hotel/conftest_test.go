package hotel

import (
	"context"
	"testing"

	"github.com/hamburgerswang/fineTuningLab/internal/db"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"
)

// mockStore implements both consumer interfaces for tests.
type mockStore struct {
	searchKNNFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchBM25Fn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFn func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)

	createIndexFn   func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn     func(ctx context.Context, name string, deleteDocs bool) error
	indexExistsFn   func(ctx context.Context, name string) (bool, error)
	indexDocCountFn func(ctx context.Context, name string) (int, error)
	hsetMultiFn     func(ctx context.Context, items []db.HashSetItem) error
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchBM25Fn != nil {
		return m.searchBM25Fn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name, deleteDocs)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) IndexDocCount(ctx context.Context, name string) (int, error) {
	if m.indexDocCountFn != nil {
		return m.indexDocCountFn(ctx, name)
	}
	return 0, nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, DefaultIndex(4)), ms
}

func newTestWriter(t *testing.T) (*Writer, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return NewWriter(ms, DefaultIndex(4)), ms
}

func mustEquals(t *testing.T, key, value string) filter.Expression {
	t.Helper()
	c, err := filter.NewEquals(key, value)
	if err != nil {
		t.Fatalf("NewEquals: %v", err)
	}
	e, err := filter.NewExpression(c)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return e
}

func hotelFields(id, name string) map[string]string {
	return map[string]string{
		"hotel_id": id,
		"name":     name,
		"type":     "豪华型",
		"price":    "388",
		"rating":   "4.6",
	}
}
