package db

import (
	"context"
	"time"
)

// Store is the product search backend: RediSearch over hashes.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides pipelined hash writes and deletes.
type HashStore interface {
	// HSetMulti pipelines all items and returns one error slot per item;
	// a nil slot means the item was stored.
	HSetMulti(ctx context.Context, items []HashSetItem) []error
	DelMulti(ctx context.Context, keys []string) (int, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, schema *Schema) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchKeys(ctx context.Context, q *KeysQuery) (*SearchResult, error)
}
