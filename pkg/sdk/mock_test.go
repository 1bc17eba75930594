package hotelsearch

import (
	"context"

	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
	healthuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/health"
	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	executeFn func(ctx context.Context, q query.Query, limit int) (searchuc.Outcome, error)
}

func (m *mockSearchUC) Execute(ctx context.Context, q query.Query, limit int) (searchuc.Outcome, error) {
	return m.executeFn(ctx, q, limit)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
