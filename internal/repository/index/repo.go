// Package index stores products in the RediSearch product index and serves
// weighted full-text queries over it.
package index

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/db"
	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/batch"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/search/filter"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
)

// Defaults for Config.
const (
	DefaultIndexName = "pricedex:products"
	DefaultKeyPrefix = "pricedex:product:"
	DefaultLanguage  = "russian"
	DefaultBatchSize = 500
)

// store is the consumer interface for the product index (ISP).
type store interface {
	CreateIndex(ctx context.Context, schema *db.Schema) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) []error
	DelMulti(ctx context.Context, keys []string) (int, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchKeys(ctx context.Context, q *db.KeysQuery) (*db.SearchResult, error)
}

// Config names the index and tunes bulk writes.
type Config struct {
	IndexName string
	KeyPrefix string
	Language  string
	BatchSize int
	Scorer    db.Scorer
	// Recreate drops an existing index so a changed schema takes effect.
	// Indexed hashes survive and are re-indexed by prefix.
	Recreate bool
}

func (c *Config) applyDefaults() {
	if c.IndexName == "" {
		c.IndexName = DefaultIndexName
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Scorer == "" {
		c.Scorer = db.ScorerTFIDF
	}
}

// Repo implements the product index used by imports and search.
type Repo struct {
	store     store
	cfg       Config
	schema    *db.Schema
	tagFields []string
	logger    *zap.Logger
}

// New creates a product index repository.
func New(s store, cfg Config, logger *zap.Logger) (*Repo, error) {
	cfg.applyDefaults()
	def, err := buildSchema(cfg)
	if err != nil {
		return nil, fmt.Errorf("build index schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{
		store:     s,
		cfg:       cfg,
		schema:    def,
		tagFields: def.Names(db.KindTag),
		logger:    logger,
	}, nil
}

// BatchSize returns the number of documents written per round-trip.
func (r *Repo) BatchSize() int { return r.cfg.BatchSize }

// EnsureIndex creates the product index. An existing index is kept as is
// unless Config.Recreate is set.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.schema.Name)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", r.schema.Name, err)
	}
	if exists {
		if !r.cfg.Recreate {
			r.logger.Debug("search index exists", zap.String("index", r.schema.Name))
			return nil
		}
		if err := r.store.DropIndex(ctx, r.schema.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index %s: %w", r.schema.Name, err)
		}
		r.logger.Info("search index dropped for recreation", zap.String("index", r.schema.Name))
	}

	err = r.store.CreateIndex(ctx, r.schema)
	switch {
	case err == nil:
		r.logger.Info("search index created", zap.String("index", r.schema.Name))
		return nil
	case errors.Is(err, db.ErrIndexExists):
		// another instance won the race
		return nil
	default:
		return fmt.Errorf("create index %s: %w", r.schema.Name, err)
	}
}

// BulkIndex writes products of one import in batches. A failed document is
// reported in its result without aborting the rest. progress, when set, sees
// every batch.
func (r *Repo) BulkIndex(
	ctx context.Context, supplierID, importID string, products []product.Record, progress func([]batch.Outcome),
) []batch.Outcome {
	results := make([]batch.Outcome, 0, len(products))

	for start := 0; start < len(products); start += r.cfg.BatchSize {
		end := min(start+r.cfg.BatchSize, len(products))

		var chunk []batch.Outcome
		if err := ctx.Err(); err != nil {
			chunk = failAll(r.cfg.KeyPrefix, supplierID, products[start:end], err)
		} else {
			chunk = r.writeBatch(ctx, supplierID, importID, products[start:end])
		}
		results = append(results, chunk...)
		if progress != nil {
			progress(chunk)
		}
	}

	tally := batch.Count(results)
	if tally.Failed > 0 {
		r.logger.Warn("indexing finished with failures",
			zap.String("supplier_id", supplierID),
			zap.String("import_id", importID),
			zap.Int("indexed", tally.Indexed),
			zap.Int("failed", tally.Failed),
			zap.Error(tally.FirstErr),
		)
	} else {
		r.logger.Info("products indexed",
			zap.String("supplier_id", supplierID),
			zap.String("import_id", importID),
			zap.Int("indexed", tally.Indexed))
	}
	return results
}

func (r *Repo) writeBatch(ctx context.Context, supplierID, importID string, products []product.Record) []batch.Outcome {
	items := make([]db.HashSetItem, len(products))
	for i := range products {
		items[i] = db.HashSetItem{
			Key:    docKey(r.cfg.KeyPrefix, supplierID, &products[i]),
			Fields: buildHashFields(supplierID, importID, &products[i]),
		}
	}

	errs := r.store.HSetMulti(ctx, items)
	out := make([]batch.Outcome, len(items))
	for i, item := range items {
		out[i] = batch.Outcome{Key: item.Key, SKU: products[i].SKU}
		if i < len(errs) && errs[i] != nil {
			out[i].Err = fmt.Errorf("%w: %w", domain.ErrIndexingFailure, errs[i])
		}
	}
	return out
}

func failAll(prefix, supplierID string, products []product.Record, err error) []batch.Outcome {
	out := make([]batch.Outcome, len(products))
	for i := range products {
		out[i] = batch.Outcome{Key: docKey(prefix, supplierID, &products[i]), SKU: products[i].SKU, Err: err}
	}
	return out
}

// DeleteBySupplier removes every indexed product of a supplier and returns
// how many documents were deleted.
func (r *Repo) DeleteBySupplier(ctx context.Context, supplierID string) (int, error) {
	cond, err := filter.NewMatch(fieldSupplierID, supplierID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	deleted, err := r.deleteWhere(ctx, cond)
	if err != nil {
		return deleted, fmt.Errorf("delete supplier %s products: %w", supplierID, err)
	}

	r.logger.Info("supplier products deleted from index",
		zap.String("supplier_id", supplierID), zap.Int("deleted", deleted))
	return deleted, nil
}

// PruneSupplier removes the supplier's documents written by any import other
// than keepImportID, i.e. products the latest import no longer lists.
func (r *Repo) PruneSupplier(ctx context.Context, supplierID, keepImportID string) (int, error) {
	sup, err := filter.NewMatch(fieldSupplierID, supplierID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	stale, err := filter.NewExclude(fieldImportID, keepImportID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	deleted, err := r.deleteWhere(ctx, sup, stale)
	if err != nil {
		return deleted, fmt.Errorf("prune supplier %s products: %w", supplierID, err)
	}

	r.logger.Info("stale supplier products pruned from index",
		zap.String("supplier_id", supplierID),
		zap.String("import_id", keepImportID),
		zap.Int("deleted", deleted))
	return deleted, nil
}

// deleteWhere pages through the keys matching conds and deletes them until
// none are left.
func (r *Repo) deleteWhere(ctx context.Context, conds ...filter.Condition) (int, error) {
	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for {
		page, err := r.store.SearchKeys(ctx, &db.KeysQuery{
			IndexName: r.schema.Name,
			Filters:   expr,
			Limit:     r.cfg.BatchSize,
		})
		if err != nil {
			return deleted, r.mapSearchErr(err)
		}
		if len(page.Entries) == 0 {
			return deleted, nil
		}

		keys := make([]string, len(page.Entries))
		for i, e := range page.Entries {
			keys[i] = e.Key
		}
		n, err := r.store.DelMulti(ctx, keys)
		deleted += n
		if err != nil {
			return deleted, err
		}
		if n == 0 {
			// Listed keys already gone; the index has not caught up yet.
			return deleted, nil
		}
	}
}

// Search runs a weighted text query and drops hits below the query's
// minimum score.
func (r *Repo) Search(
	ctx context.Context, q query.Query, filters filter.Expression, size int,
) ([]result.Hit, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: r.schema.Name,
		Query:     q,
		Filters:   filters,
		Scorer:    r.cfg.Scorer,
		TagFields: r.tagFields,
		Limit:     size,
	})
	if err != nil {
		return nil, r.mapSearchErr(err)
	}

	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if e.Score < q.MinScore() {
			continue
		}
		supplierID, rec := parseHashFields(e.Fields)
		hits = append(hits, result.Hit{
			ID:         strings.TrimPrefix(e.Key, r.cfg.KeyPrefix),
			SupplierID: supplierID,
			Product:    rec,
			Score:      e.Score,
		})
	}
	return hits, nil
}

func (r *Repo) mapSearchErr(err error) error {
	if errors.Is(err, db.ErrUnavailable) || errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrSearchBackendUnavailable, err)
	}
	return fmt.Errorf("search %s: %w", r.schema.Name, err)
}
