package catalog

import (
	"context"

	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// Index removes supplier documents from the search index.
type Index interface {
	DeleteBySupplier(ctx context.Context, supplierID string) (int, error)
}

// Corpus holds supplier products, tags and profiles.
type Corpus interface {
	DeleteSupplierProducts(ctx context.Context, supplierID string) (int, error)
	Tags(ctx context.Context, supplierID string) ([]string, error)
	ResetTags(ctx context.Context, supplierID string) error
	GetSupplier(ctx context.Context, id string) (supplier.Supplier, error)
}
