package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
)

// ctxCheckEvery is how many records are processed between cancellation checks.
const ctxCheckEvery = 1000

// SaveProducts stores the products of one import and then drops the
// supplier's records from earlier imports, so the latest import is the
// supplier's whole corpus. A SKU pointer is moved to the new record; pointers
// of SKUs the import no longer lists are removed. Writes spill into further
// transactions when one grows too big.
func (s *Store) SaveProducts(ctx context.Context, supplierID, importID string, products []product.Record) error {
	tx := s.db.NewTransaction(true)
	defer func() { tx.Discard() }()

	set := func(key, val []byte) error {
		err := tx.Set(key, val)
		if !errors.Is(err, badger.ErrTxnTooBig) {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		tx = s.db.NewTransaction(true)
		return tx.Set(key, val)
	}

	listed := make(map[string]struct{}, len(products))
	for i := range products {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		p := &products[i]
		val, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal product %d: %w", i, err)
		}
		key := productKey(supplierID, importID, i)
		if err := set(key, val); err != nil {
			return fmt.Errorf("save product %d: %w", i, err)
		}
		if p.HasSKU() {
			listed[p.SKU] = struct{}{}
			if err := set(skuKey(supplierID, p.SKU), key); err != nil {
				return fmt.Errorf("save sku %s: %w", p.SKU, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}

	dropped, err := s.dropPrevious(supplierID, importID, listed)
	if err != nil {
		return fmt.Errorf("drop previous products of %s: %w", supplierID, err)
	}
	s.logger.Debug("corpus products saved",
		zap.String("supplier_id", supplierID),
		zap.String("import_id", importID),
		zap.Int("products", len(products)),
		zap.Int("dropped", dropped),
	)
	return nil
}

// dropPrevious deletes the supplier's products written by other imports and
// the SKU pointers not in listed. It returns the number of products deleted.
func (s *Store) dropPrevious(supplierID, importID string, listed map[string]struct{}) (int, error) {
	var keys [][]byte
	dropped := 0
	keep := []byte(string(supplierProductsPrefix(supplierID)) + importID + "/")
	err := s.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		opts.Prefix = supplierProductsPrefix(supplierID)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if k := iter.Item().Key(); !bytes.HasPrefix(k, keep) {
				keys = append(keys, iter.Item().KeyCopy(nil))
				dropped++
			}
		}
		iter.Close()

		prefix := supplierSKUPrefix(supplierID)
		opts.Prefix = prefix
		iter = tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if _, ok := listed[string(iter.Item().Key()[len(prefix):])]; !ok {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
		}
		iter.Close()
		return nil
	})
	if err != nil || len(keys) == 0 {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete %s: %w", k, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush deletes: %w", err)
	}
	return dropped, nil
}

// GetExistingSKUs returns the SKUs already stored for a supplier.
func (s *Store) GetExistingSKUs(_ context.Context, supplierID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	prefix := supplierSKUPrefix(supplierID)
	err := s.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			out[string(iter.Item().Key()[len(prefix):])] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list skus of %s: %w", supplierID, err)
	}
	return out, nil
}

// DeleteSupplierProducts removes every product and SKU pointer of a supplier
// and returns the number of products removed.
func (s *Store) DeleteSupplierProducts(_ context.Context, supplierID string) (int, error) {
	var keys [][]byte
	products := 0
	err := s.view(func(tx *badger.Txn) error {
		for _, prefix := range [][]byte{supplierProductsPrefix(supplierID), supplierSKUPrefix(supplierID)} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
				if strings.HasPrefix(string(prefix), productPrefix) {
					products++
				}
			}
			iter.Close()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("list products of %s: %w", supplierID, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete %s: %w", k, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush deletes: %w", err)
	}

	s.logger.Info("supplier products deleted from corpus",
		zap.String("supplier_id", supplierID), zap.Int("deleted", products))
	return products, nil
}

// Match is the degraded search: a case-insensitive substring scan over the
// current products (the latest record per SKU plus every SKU-less record).
// A product matches when every query word occurs in its name, SKU, brand or
// raw text, or when the whole query equals one of its tags. Every hit scores
// result.FallbackScore.
func (s *Store) Match(ctx context.Context, text string, filters request.Filters, limit int) ([]result.Hit, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" || limit <= 0 {
		return nil, nil
	}
	words := strings.Fields(needle)

	prefixes := [][]byte{[]byte(productPrefix)}
	if len(filters.SupplierIDs) > 0 {
		prefixes = prefixes[:0]
		for _, id := range filters.SupplierIDs {
			prefixes = append(prefixes, supplierProductsPrefix(id))
		}
	}

	var hits []result.Hit
	err := s.view(func(tx *badger.Txn) error {
		scanned := 0
		for _, prefix := range prefixes {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid() && len(hits) < limit; iter.Next() {
				scanned++
				if scanned%ctxCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						iter.Close()
						return err
					}
				}

				item := iter.Item()
				var rec product.Record
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
					iter.Close()
					return fmt.Errorf("decode %s: %w", item.Key(), err)
				}
				supplierID, docID := parseProductKey(item.Key())

				if rec.HasSKU() && !isCurrent(tx, supplierID, rec.SKU, item.Key()) {
					continue
				}
				if !accepts(&rec, filters) || !contains(&rec, needle, words) {
					continue
				}
				hits = append(hits, result.Hit{
					ID:         docID,
					SupplierID: supplierID,
					Product:    rec,
					Score:      result.FallbackScore,
					Tier:       result.TierUnranked,
				})
			}
			iter.Close()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus match: %w", err)
	}
	return hits, nil
}

func isCurrent(tx *badger.Txn, supplierID, sku string, key []byte) bool {
	item, err := tx.Get(skuKey(supplierID, sku))
	if err != nil {
		return false
	}
	current := false
	_ = item.Value(func(val []byte) error {
		current = string(val) == string(key)
		return nil
	})
	return current
}

func contains(p *product.Record, needle string, words []string) bool {
	haystack := strings.ToLower(strings.Join([]string{p.Name, p.SKU, p.Brand, p.RawText}, "\n"))
	all := true
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			all = false
			break
		}
	}
	if all {
		return true
	}
	for _, t := range p.Tags {
		if strings.ToLower(t) == needle {
			return true
		}
	}
	return false
}

// accepts applies the structured filters except supplier ids, which select
// the scanned prefixes.
func accepts(p *product.Record, f request.Filters) bool {
	if len(f.Brands) > 0 && !equalFoldAny(p.Brand, f.Brands) {
		return false
	}
	if len(f.Categories) > 0 && !equalFoldAny(p.Category, f.Categories) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		if p.Price == nil {
			return false
		}
		if f.MinPrice != nil && *p.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && *p.Price > *f.MaxPrice {
			return false
		}
	}
	return true
}

func equalFoldAny(v string, values []string) bool {
	for _, want := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
