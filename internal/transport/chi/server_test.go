package chi

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"testing"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
)

// --- POST /v1/hotels/search ---

func TestSearchHotels_StructuredSortedAndEchoed(t *testing.T) {
	env := newTestEnv(t)
	env.repo.results = []hotel.Hotel{
		testHotel(1, "北京饭店", 300),
		testHotel(2, "王府井大饭店", 450),
		testHotel(3, "国贸大酒店", 380),
	}

	rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{
		"query": {
			"type": "豪华型",
			"price_range_upper": 500,
			"name": null,
			"sort": {"slot": "price", "ordering": "descend"}
		},
		"limit": 2
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decodeSearch(t, rr)
	if resp.Strategy != "structured" {
		t.Errorf("strategy = %q, want structured", resp.Strategy)
	}
	if got := itemIDs(resp.Items); !slices.Equal(got, []int64{2, 3}) {
		t.Errorf("ids = %v, want [2 3]", got)
	}
	if resp.Total != 2 || resp.Limit != 2 {
		t.Errorf("total/limit = %d/%d", resp.Total, resp.Limit)
	}
	if resp.Query["type"] != "豪华型" || resp.Query["price_range_upper"] != float64(500) {
		t.Errorf("query echo = %v", resp.Query)
	}
	if _, ok := resp.Query["name"]; ok {
		t.Error("null slot must not be echoed")
	}
	if len(env.repo.calls) != 1 || env.repo.calls[0].limit != 12 {
		t.Errorf("expected one fetch with limit+over-fetch, got %+v", env.repo.calls)
	}
	if rr.Header().Get("X-Embedding-Tokens") != "" {
		t.Error("structured search must not report embedding usage")
	}
}

func TestSearchHotels_VectorReportsTokens(t *testing.T) {
	env := newTestEnv(t)
	env.embed.tokens = 7
	env.repo.results = []hotel.Hotel{testHotel(9, "亚朵酒店", 500)}

	rr := env.do(t, http.MethodPost, "/v1/hotels/search",
		`{"query": {"facilities": ["免费WiFi", "停车场"], "name": "亚朵"}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Embedding-Tokens") != "7" {
		t.Errorf("X-Embedding-Tokens = %q, want 7", rr.Header().Get("X-Embedding-Tokens"))
	}
	if rr.Header().Get("X-Search-Strategy") != "vector" {
		t.Errorf("X-Search-Strategy = %q", rr.Header().Get("X-Search-Strategy"))
	}
	if env.embed.lastText != "酒店提供：免费WiFi，停车场" {
		t.Errorf("vector text = %q", env.embed.lastText)
	}
	resp := decodeSearch(t, rr)
	if resp.Limit != 5 {
		t.Errorf("default limit = %d, want 5", resp.Limit)
	}
}

func TestSearchHotels_ZeroLimit(t *testing.T) {
	env := newTestEnv(t)
	env.repo.results = []hotel.Hotel{testHotel(1, "x", 1)}

	rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{"query": {}, "limit": 0}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeSearch(t, rr)
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("expected empty items, got %v", resp.Items)
	}
	if len(env.repo.calls) != 0 {
		t.Error("store must not be contacted for limit 0")
	}
}

func TestSearchHotels_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{"query": `)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if decodeError(t, rr).Code != CodeBadRequest {
		t.Error("expected bad_request code")
	}
}

func TestSearchHotels_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{"query": {"rating_range_lower": 7}}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Code != CodeInvalidQuery {
		t.Errorf("code = %q, want invalid_query", resp.Code)
	}
	if len(env.repo.calls) != 0 {
		t.Error("store must not be contacted for an invalid query")
	}
}

func TestSearchHotels_EmptyTypeRejected(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{"query": {"type": ""}}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeInvalidQuery {
		t.Errorf("code = %q, want invalid_query", resp.Code)
	}
	if len(env.repo.calls) != 0 {
		t.Error("store must not be contacted for an empty type")
	}
}

func TestSearchHotels_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		embedErr error
		query    string
		status   int
		code     string
	}{
		{
			name:    "store failure",
			repoErr: errors.New("connection reset"),
			query:   `{"type": "经济型"}`,
			status:  http.StatusServiceUnavailable,
			code:    CodeRetrievalFailed,
		},
		{
			name:    "index missing",
			repoErr: fmt.Errorf("fetch hotels: %w", domain.ErrIndexNotReady),
			query:   `{}`,
			status:  http.StatusServiceUnavailable,
			code:    CodeIndexNotReady,
		},
		{
			name:     "embedding provider",
			embedErr: fmt.Errorf("429: %w", domain.ErrEmbeddingProviderError),
			query:    `{"facilities": ["健身房"]}`,
			status:   http.StatusBadGateway,
			code:     CodeEmbeddingProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.repo.err = tt.repoErr
			env.embed.err = tt.embedErr

			rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{"query": `+tt.query+`}`)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			resp := decodeError(t, rr)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Message == "connection reset" {
				t.Error("internal cause must not leak")
			}
		})
	}
}

func TestSearchHotels_MalformedRecord(t *testing.T) {
	env := newTestEnv(t)
	env.repo.results = []hotel.Hotel{{Name: "无编号"}}

	rr := env.do(t, http.MethodPost, "/v1/hotels/search", `{"query": {}}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if decodeError(t, rr).Code != CodeMalformedRecord {
		t.Error("expected malformed_record code")
	}
}

// --- GET /v1/hotels/search ---

func TestSearchHotelsByParams_NameKeyword(t *testing.T) {
	env := newTestEnv(t)
	env.repo.results = []hotel.Hotel{testHotel(4, "北京如家酒店", 200), testHotel(5, "汉庭", 180)}

	rr := env.do(t, http.MethodGet,
		"/v1/hotels/search?name=%E5%A6%82%E5%AE%B6&price_range_lower=100&limit=3", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decodeSearch(t, rr)
	if resp.Strategy != "name_keyword" {
		t.Errorf("strategy = %q, want name_keyword", resp.Strategy)
	}
	if got := itemIDs(resp.Items); !slices.Equal(got, []int64{4}) {
		t.Errorf("name post-filter: ids = %v, want [4]", got)
	}
	call := env.repo.calls[0]
	if call.text != "如家" || call.field != "_name" || call.limit != 13 {
		t.Errorf("unexpected keyword call: %+v", call)
	}
	if len(call.filters.Conditions()) != 1 {
		t.Errorf("expected price predicate, got %d conditions", len(call.filters.Conditions()))
	}
}

func TestSearchHotelsByParams_ExplodedFacilities(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet,
		"/v1/hotels/search?facilities=wifi&facilities=spa&sort.slot=rating&sort.ordering=descend", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decodeSearch(t, rr)
	if resp.Strategy != "vector" {
		t.Errorf("strategy = %q, want vector", resp.Strategy)
	}
	if env.embed.lastText != "酒店提供：wifi，spa" {
		t.Errorf("vector text = %q", env.embed.lastText)
	}
	if resp.Query["sort.ordering"] != "descend" {
		t.Errorf("query echo = %v", resp.Query)
	}
}

func TestSearchHotelsByParams_BadNumber(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/v1/hotels/search?price_range_upper=cheap", "")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if decodeError(t, rr).Code != CodeBadRequest {
		t.Error("expected bad_request code")
	}
}

// --- GET /health ---

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy: status = %d", rr.Code)
	}

	env.pinger.err = errors.New("down")
	rr = env.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: status = %d", rr.Code)
	}
}
