package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamburgerswang/fineTuningLab/internal/domain"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/hotel"
	"github.com/hamburgerswang/fineTuningLab/internal/domain/search/query"
	healthuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/health"
	searchuc "github.com/hamburgerswang/fineTuningLab/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest        = "bad_request"
	CodeUnauthorized      = "unauthorized"
	CodeInvalidQuery      = "invalid_query"
	CodeIndexNotReady     = "index_not_ready"
	CodeEmbeddingProvider = "embedding_provider_error"
	CodeRetrievalFailed   = "retrieval_failed"
	CodeMalformedRecord   = "malformed_record"
	CodeInternal          = "internal_error"
)

// maxBodyBytes bounds the POST search body.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the hotel search HTTP API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	defaultLimit  int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// SearchRequest is the POST /v1/hotels/search body.
type SearchRequest struct {
	Query query.Raw `json:"query"`
	Limit *int      `json:"limit,omitempty"`
}

// SearchResponse echoes the normalized query and the chosen strategy next to the hotels.
type SearchResponse struct {
	Query    map[string]any `json:"query"`
	Strategy string         `json:"strategy"`
	Items    []hotel.Hotel  `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewServer creates an HTTP API server. defaultLimit applies when a request omits limit.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	defaultLimit int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:       search,
		health:       health,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
	// order matters: a vector retrieval failure caused by the provider is reported as a provider error
	s.errorHandlers = []errorHandler{
		invalidQueryHandler,
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeIndexNotReady),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrMalformedRecord, http.StatusInternalServerError, CodeMalformedRecord),
		sentinelHandler(domain.ErrRetrieval, http.StatusServiceUnavailable, CodeRetrievalFailed),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1/hotels", func(r chi.Router) {
		r.Post("/search", s.SearchHotels)
		r.Get("/search", s.SearchHotelsByParams)
	})
}

// SearchHotels handles POST /v1/hotels/search.
func (s *Server) SearchHotels(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	limit := s.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	s.runSearch(w, r, req.Query, limit)
}

// SearchHotelsByParams handles GET /v1/hotels/search with slots as query parameters.
func (s *Server) SearchHotelsByParams(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	limit := s.defaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	s.runSearch(w, r, params.raw(), limit)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, raw query.Raw, limit int) {
	q, err := query.Normalize(raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.search.Execute(ctx, q, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	w.Header().Set("X-Search-Strategy", string(out.Strategy))
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:    out.Query.Slots(),
		Strategy: string(out.Strategy),
		Items:    out.Hotels,
		Total:    len(out.Hotels),
		Limit:    limit,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrIndexNotReady,
		domain.ErrEmbeddingProviderError,
		domain.ErrMalformedRecord,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidQueryHandler reports the rejected slot; the message only echoes caller input.
func invalidQueryHandler(w http.ResponseWriter, err error, _ string) bool {
	var iqe *domain.InvalidQueryError
	if !errors.As(err, &iqe) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeInvalidQuery, iqe.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
