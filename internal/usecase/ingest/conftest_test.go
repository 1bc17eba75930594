package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	hotelrepo "github.com/hamburgerswang/fineTuningLab/internal/repository/hotel"
)

type mockWriter struct {
	mu          sync.Mutex
	recreateErr error
	putErr      func(docs []hotelrepo.Document) error
	recreated   int
	stored      []hotelrepo.Document
}

func (m *mockWriter) Recreate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recreated++
	return m.recreateErr
}

func (m *mockWriter) Put(_ context.Context, docs []hotelrepo.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		if err := m.putErr(docs); err != nil {
			return err
		}
	}
	m.stored = append(m.stored, docs...)
	return nil
}

func (m *mockWriter) byID() map[int64]hotelrepo.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]hotelrepo.Document, len(m.stored))
	for _, d := range m.stored {
		id, _ := d.Hotel.ID()
		out[id] = d
	}
	return out
}

// mockBatchEmbedder encodes the text length into the vector so tests can match vectors to texts.
type mockBatchEmbedder struct {
	mu      sync.Mutex
	failOn  string
	calls   [][]string
	short   bool
	perText int
}

func (m *mockBatchEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := m.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0], TotalTokens: res.TotalTokens}, nil
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), texts...))
	m.mu.Unlock()

	for _, t := range texts {
		if m.failOn != "" && strings.Contains(t, m.failOn) {
			return domain.BatchEmbeddingResult{}, domain.ErrEmbeddingProviderError
		}
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, n), TotalTokens: m.perText * len(texts)}
	for i := range n {
		out.Embeddings[i] = []float32{float32(len([]rune(texts[i]))), 1}
	}
	return out, nil
}

func (m *mockBatchEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func id(v int64) *int64 { return &v }

func str(v string) *string { return &v }
