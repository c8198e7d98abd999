package search

import (
	"context"

	"github.com/kailas-cloud/pricedex/internal/domain/search/filter"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// Index is the primary full-text product index.
type Index interface {
	Search(ctx context.Context, q query.Query, filters filter.Expression, size int) ([]result.Hit, error)
}

// Corpus is the persisted product store used for fallback matching and
// supplier profiles.
type Corpus interface {
	Match(ctx context.Context, text string, filters request.Filters, limit int) ([]result.Hit, error)
	Suppliers(ctx context.Context, ids []string) (map[string]supplier.Supplier, error)
}
