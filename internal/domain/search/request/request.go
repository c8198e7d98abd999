package request

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in characters.
	MaxQueryLength = 500
	DefaultLimit   = 100
	MaxLimit       = 1000
)

// Filters are the structured, non-scoring constraints of a search.
type Filters struct {
	SupplierIDs []string
	Brands      []string
	Categories  []string
	MinPrice    *float64
	MaxPrice    *float64
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return len(f.SupplierIDs) == 0 && len(f.Brands) == 0 && len(f.Categories) == 0 &&
		f.MinPrice == nil && f.MaxPrice == nil
}

// Request is a validated search query.
type Request struct {
	query   string
	filters Filters
	limit   int
}

// New validates and normalizes search parameters.
// The query is trimmed; limit defaults to 100 and is clamped to [1, 1000].
func New(query string, filters Filters, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if filters.MinPrice != nil && *filters.MinPrice < 0 {
		return Request{}, fmt.Errorf("min_price must be non-negative")
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return Request{}, fmt.Errorf("min_price must not exceed max_price")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query:   query,
		filters: filters,
		limit:   limit,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Filters returns the structured filters.
func (r *Request) Filters() Filters { return r.filters }

// Limit returns the maximum number of products to return.
func (r *Request) Limit() int { return r.limit }
