package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/pricedex/internal/ingest/tags"
)

// MergeTags adds incoming tags to the supplier's set and returns the merged
// set. Merges for one supplier run one at a time.
func (s *Store) MergeTags(ctx context.Context, supplierID string, incoming []string) ([]string, error) {
	mu := s.tagLock(supplierID)
	mu.Lock()
	defer mu.Unlock()

	var merged []string
	err := s.update(ctx, func(tx *badger.Txn) error {
		existing, err := readTags(tx, supplierID)
		if err != nil {
			return err
		}
		merged = tags.Union(existing, incoming)
		val, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return tx.Set(tagsKey(supplierID), val)
	})
	if err != nil {
		return nil, fmt.Errorf("merge tags of %s: %w", supplierID, err)
	}
	return merged, nil
}

// Tags returns the supplier's tag set, empty when none was stored.
func (s *Store) Tags(_ context.Context, supplierID string) ([]string, error) {
	var out []string
	err := s.view(func(tx *badger.Txn) error {
		var err error
		out, err = readTags(tx, supplierID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read tags of %s: %w", supplierID, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ResetTags drops the supplier's tag set.
func (s *Store) ResetTags(ctx context.Context, supplierID string) error {
	mu := s.tagLock(supplierID)
	mu.Lock()
	defer mu.Unlock()

	err := s.update(ctx, func(tx *badger.Txn) error {
		return tx.Delete(tagsKey(supplierID))
	})
	if err != nil {
		return fmt.Errorf("reset tags of %s: %w", supplierID, err)
	}
	return nil
}

func readTags(tx *badger.Txn, supplierID string) ([]string, error) {
	item, err := tx.Get(tagsKey(supplierID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	err = item.Value(func(val []byte) error { return json.Unmarshal(val, &out) })
	return out, err
}
