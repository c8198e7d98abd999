// Package corpus is the embedded badger store of supplier products, tag
// sets, import records and supplier profiles. It also answers degraded
// searches when the index cannot.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// maxConflictRetries bounds optimistic retries of read-modify-write updates.
const maxConflictRetries = 5

// Config selects where badger keeps its files.
type Config struct {
	Path     string
	InMemory bool
}

// Store wraps a badger database.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	// tagLocks serializes tag merges per supplier.
	tagLocks sync.Map
}

// zapBadgerLogger routes badger logs through zap.
type zapBadgerLogger struct {
	sugar *zap.SugaredLogger
}

var _ badger.Logger = (*zapBadgerLogger)(nil)

func (l *zapBadgerLogger) Errorf(msg string, items ...any)   { l.sugar.Errorf(msg, items...) }
func (l *zapBadgerLogger) Warningf(msg string, items ...any) { l.sugar.Warnf(msg, items...) }
func (l *zapBadgerLogger) Infof(msg string, items ...any)    { l.sugar.Infof(msg, items...) }
func (l *zapBadgerLogger) Debugf(msg string, items ...any)   { l.sugar.Debugf(msg, items...) }

// Open opens the corpus database, creating the directory when needed.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("corpus path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create corpus dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &zapBadgerLogger{sugar: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a throwaway in-memory corpus.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	return Open(Config{InMemory: true}, logger)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("corpus store is closed")
	}
	return nil
}

// view runs fn in a read-only transaction.
func (s *Store) view(fn func(tx *badger.Txn) error) error {
	tx := s.db.NewTransaction(false)
	defer tx.Discard()
	return fn(tx)
}

// update runs fn in a read-write transaction and commits it, retrying when a
// concurrent writer wins the conflict check.
func (s *Store) update(ctx context.Context, fn func(tx *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.updateOnce(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("corpus transaction conflict, retrying")
	}
	return err
}

func (s *Store) updateOnce(fn func(tx *badger.Txn) error) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) tagLock(supplierID string) *sync.Mutex {
	mu, _ := s.tagLocks.LoadOrStore(supplierID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
