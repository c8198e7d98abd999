package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pricedex/internal/db"
)

// HSetMulti stores multiple hashes in a single DoMulti round-trip and reports
// the outcome of each item.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) []error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	errs := make([]error, len(items))
	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			errs[i] = wrapKeyErr(db.OpHSet, items[i].Key, err)
		}
	}
	return errs
}

// DelMulti deletes keys one command per key in a single round-trip, so keys
// may live in different cluster slots. Returns the number of keys removed.
func (s *Store) DelMulti(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Del().Key(key).Build()
	}

	deleted := 0
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		n, err := res.AsInt64()
		if err != nil {
			return deleted, wrapKeyErr(db.OpDel, keys[i], err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
