package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"
	healthuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/health"
	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
)

type repoCall struct {
	method  string
	text    string
	field   string
	filters filter.Expression
	limit   int
}

// mockRepo implements searchuc.Repository for tests.
type mockRepo struct {
	results []hotel.Hotel
	err     error
	calls   []repoCall
}

func (m *mockRepo) Fetch(_ context.Context, filters filter.Expression, limit int) ([]hotel.Hotel, error) {
	m.calls = append(m.calls, repoCall{method: "fetch", filters: filters, limit: limit})
	return m.results, m.err
}

func (m *mockRepo) SearchVector(
	_ context.Context, _ []float32, filters filter.Expression, limit int,
) ([]hotel.Hotel, error) {
	m.calls = append(m.calls, repoCall{method: "vector", filters: filters, limit: limit})
	return m.results, m.err
}

func (m *mockRepo) SearchKeyword(
	_ context.Context, text, field string, filters filter.Expression, limit int,
) ([]hotel.Hotel, error) {
	m.calls = append(m.calls, repoCall{method: "keyword", text: text, field: field, filters: filters, limit: limit})
	return m.results, m.err
}

type mockEmbedder struct {
	tokens   int
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: m.tokens}, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

type testEnv struct {
	repo    *mockRepo
	embed   *mockEmbedder
	pinger  *mockPinger
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{repo: &mockRepo{}, embed: &mockEmbedder{}, pinger: &mockPinger{}}
	search := searchuc.New(env.repo, env.embed, searchuc.Config{})
	health := healthuc.New(env.pinger, nil, nil)
	srv := NewServer(search, health, 5, zap.NewNop())

	r := chi.NewRouter()
	srv.Routes(r)
	env.handler = r
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeSearch(t *testing.T, rr *httptest.ResponseRecorder) SearchResponse {
	t.Helper()
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func testHotel(id int64, name string, price float64) hotel.Hotel {
	return hotel.Hotel{HotelID: &id, Name: name, Type: "豪华型", Price: price, Rating: 4.5}
}

func itemIDs(items []hotel.Hotel) []int64 {
	out := make([]int64, len(items))
	for i := range items {
		out[i], _ = items[i].ID()
	}
	return out
}
