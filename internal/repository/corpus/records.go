package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// SaveImport stores an import record, replacing any previous version.
func (s *Store) SaveImport(ctx context.Context, imp *imports.Import) error {
	val, err := json.Marshal(imp)
	if err != nil {
		return fmt.Errorf("marshal import: %w", err)
	}
	err = s.update(ctx, func(tx *badger.Txn) error {
		return tx.Set(importKey(imp.ID), val)
	})
	if err != nil {
		return fmt.Errorf("save import %s: %w", imp.ID, err)
	}
	return nil
}

// GetImport loads an import record.
func (s *Store) GetImport(_ context.Context, id string) (imports.Import, error) {
	var imp imports.Import
	if err := s.get(importKey(id), &imp); err != nil {
		return imports.Import{}, fmt.Errorf("import %s: %w", id, err)
	}
	return imp, nil
}

// UpsertSupplier stores a supplier profile. Empty name, INN and color and a
// zero rating keep the stored values.
func (s *Store) UpsertSupplier(ctx context.Context, sup supplier.Supplier) error {
	err := s.update(ctx, func(tx *badger.Txn) error {
		var current supplier.Supplier
		err := getTx(tx, supplierKey(sup.ID), &current)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			current = sup
		case err != nil:
			return err
		default:
			current = mergeSupplier(current, sup)
		}
		val, err := json.Marshal(current)
		if err != nil {
			return err
		}
		return tx.Set(supplierKey(sup.ID), val)
	})
	if err != nil {
		return fmt.Errorf("upsert supplier %s: %w", sup.ID, err)
	}
	return nil
}

func mergeSupplier(current, in supplier.Supplier) supplier.Supplier {
	if in.Name != "" {
		current.Name = in.Name
	}
	if in.INN != "" {
		current.INN = in.INN
	}
	if in.Color != "" {
		current.Color = in.Color
	}
	if in.Rating > 0 {
		current.Rating = in.Rating
	}
	return current
}

// GetSupplier loads a supplier profile.
func (s *Store) GetSupplier(_ context.Context, id string) (supplier.Supplier, error) {
	var sup supplier.Supplier
	if err := s.get(supplierKey(id), &sup); err != nil {
		return supplier.Supplier{}, fmt.Errorf("supplier %s: %w", id, err)
	}
	return sup, nil
}

// Suppliers loads the profiles of the given ids. Unknown ids get a bare
// profile carrying only the id.
func (s *Store) Suppliers(_ context.Context, ids []string) (map[string]supplier.Supplier, error) {
	out := make(map[string]supplier.Supplier, len(ids))
	err := s.view(func(tx *badger.Txn) error {
		for _, id := range ids {
			var sup supplier.Supplier
			err := getTx(tx, supplierKey(id), &sup)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				sup = supplier.Supplier{ID: id}
			case err != nil:
				return err
			}
			out[id] = sup
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	return out, nil
}

func (s *Store) get(key []byte, v any) error {
	return s.view(func(tx *badger.Txn) error {
		return getTx(tx, key, v)
	})
}

func getTx(tx *badger.Txn, key []byte, v any) error {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error { return json.Unmarshal(val, v) })
}
