package db

import "github.com/hamburgerswang/fineTuningLab/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to "vector"
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 search over one TEXT field.
// Terms are OR-combined; each term is escaped before it reaches the query string.
type TextQuery struct {
	IndexName    string
	Field        string
	Terms        []string
	Filters      filter.Expression
	Limit        int
	Scorer       string // FT.SEARCH SCORER; empty keeps the server default
	ReturnFields []string
}

// ListQuery is the input for a filter-only enumeration.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	SortBy       string // ascending sort field for a stable enumeration order
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
