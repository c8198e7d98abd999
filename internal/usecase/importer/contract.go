package importer

import (
	"context"

	"github.com/kailas-cloud/pricedex/internal/domain/batch"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
	"github.com/kailas-cloud/pricedex/internal/ingest"
)

// Parser turns file contents into a deduplicated, tagged corpus.
type Parser interface {
	Parse(ctx context.Context, filename string, data []byte) (*ingest.Result, error)
}

// Corpus persists imports, supplier profiles, products and tags.
type Corpus interface {
	SaveImport(ctx context.Context, imp *imports.Import) error
	GetImport(ctx context.Context, id string) (imports.Import, error)
	UpsertSupplier(ctx context.Context, sup supplier.Supplier) error
	GetExistingSKUs(ctx context.Context, supplierID string) (map[string]struct{}, error)
	SaveProducts(ctx context.Context, supplierID, importID string, products []product.Record) error
	MergeTags(ctx context.Context, supplierID string, incoming []string) ([]string, error)
}

// Index writes products to the search index in batches and removes the
// documents a newer import no longer lists.
type Index interface {
	BulkIndex(
		ctx context.Context, supplierID, importID string, products []product.Record, progress func([]batch.Outcome),
	) []batch.Outcome
	PruneSupplier(ctx context.Context, supplierID, keepImportID string) (int, error)
}
