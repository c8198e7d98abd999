// Package catalog serves per-supplier reads and removals across the search
// index and the corpus store.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// Deletion counts the records removed from each store.
type Deletion struct {
	Indexed int `json:"indexed"`
	Stored  int `json:"stored"`
}

// Service handles supplier catalog operations.
type Service struct {
	index  Index
	corpus Corpus
	logger *zap.Logger
}

// New creates a catalog service.
func New(index Index, corpus Corpus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, corpus: corpus, logger: logger}
}

// Supplier returns a supplier profile.
func (s *Service) Supplier(ctx context.Context, id string) (supplier.Supplier, error) {
	if id == "" {
		return supplier.Supplier{}, fmt.Errorf("%w: supplier id is required", domain.ErrInvalidRequest)
	}
	sup, err := s.corpus.GetSupplier(ctx, id)
	if err != nil {
		return supplier.Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	return sup, nil
}

// Tags returns the aggregated tag set of a supplier.
func (s *Service) Tags(ctx context.Context, supplierID string) ([]string, error) {
	if supplierID == "" {
		return nil, fmt.Errorf("%w: supplier id is required", domain.ErrInvalidRequest)
	}
	tags, err := s.corpus.Tags(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return tags, nil
}

// DeleteProducts removes a supplier's products from the index and the
// corpus and clears its tags. Both stores are attempted even if one fails.
func (s *Service) DeleteProducts(ctx context.Context, supplierID string) (Deletion, error) {
	if supplierID == "" {
		return Deletion{}, fmt.Errorf("%w: supplier id is required", domain.ErrInvalidRequest)
	}

	var d Deletion
	var errs []error

	n, err := s.index.DeleteBySupplier(ctx, supplierID)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete from index: %w", err))
	}
	d.Indexed = n

	n, err = s.corpus.DeleteSupplierProducts(ctx, supplierID)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete from corpus: %w", err))
	}
	d.Stored = n

	if err := s.corpus.ResetTags(ctx, supplierID); err != nil {
		errs = append(errs, fmt.Errorf("reset tags: %w", err))
	}

	s.logger.Info("supplier products deleted",
		zap.String("supplier_id", supplierID),
		zap.Int("indexed", d.Indexed),
		zap.Int("stored", d.Stored),
		zap.Int("errors", len(errs)),
	)
	return d, errors.Join(errs...)
}
