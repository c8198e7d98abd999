package db

import (
	"github.com/kailas-cloud/pricedex/internal/domain/search/filter"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
)

// Scorer names a server-side scoring function.
type Scorer string

// Supported scorers.
const (
	ScorerTFIDF Scorer = "TFIDF"
	ScorerBM25  Scorer = "BM25"
)

// TextQuery is the input for a scored multi-clause text search.
type TextQuery struct {
	IndexName string
	Query     query.Query
	// Filters narrow the result set without affecting scores.
	Filters filter.Expression
	Scorer  Scorer
	// TagFields names the TAG fields among clause targets; fuzzy clauses on
	// them degrade to any-of tag matches.
	TagFields []string
	Offset    int
	Limit     int
}

// KeysQuery lists document keys matching a filter, without content or scores.
type KeysQuery struct {
	IndexName string
	Filters   filter.Expression
	Offset    int
	Limit     int
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
