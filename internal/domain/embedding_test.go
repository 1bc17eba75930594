package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	calls  []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.calls = append(s.calls, text)
	return s.result, s.err
}

type stubBatchEmbedder struct {
	stubEmbedder
	batchCalls int
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchCalls++
	out := BatchEmbeddingResult{TotalTokens: len(texts)}
	for range texts {
		out.Embeddings = append(out.Embeddings, []float32{1})
	}
	return out, nil
}

func TestEmbedAll_FallbackCallsEmbedPerText(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}, PromptTokens: 2, TotalTokens: 3}}

	res, err := EmbedAll(context.Background(), inner, []string{"wifi", "pool"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.calls) != 2 {
		t.Fatalf("expected 2 Embed calls, got %d", len(inner.calls))
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if res.TotalTokens != 6 || res.PromptTokens != 4 {
		t.Errorf("tokens = %d/%d, want 4/6", res.PromptTokens, res.TotalTokens)
	}
}

func TestEmbedAll_UsesBatchWhenSupported(t *testing.T) {
	inner := &stubBatchEmbedder{}

	res, err := EmbedAll(context.Background(), inner, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if len(inner.calls) != 0 {
		t.Errorf("Embed should not be called, got %d calls", len(inner.calls))
	}
	if len(res.Embeddings) != 3 {
		t.Errorf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
}

func TestEmbedAll_ErrorPropagation(t *testing.T) {
	providerErr := errors.New("provider down")
	inner := &stubEmbedder{err: providerErr}

	_, err := EmbedAll(context.Background(), inner, []string{"a"})
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestEmbeddingUsage_AddTokens(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(7)
	if u.TotalTokens != 7 || !u.Used {
		t.Errorf("usage = %+v, want 7 tokens used", *u)
	}

	var none *EmbeddingUsage
	none.AddTokens(1) // nil receiver must be safe
	if UsageFromContext(context.Background()) != nil {
		t.Error("expected nil usage for bare context")
	}
}
