// Package importer runs price-list imports as background jobs on a bounded
// worker pool.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/batch"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
	"github.com/kailas-cloud/pricedex/internal/ingest"
	"github.com/kailas-cloud/pricedex/internal/ingest/sheet"
	logpkg "github.com/kailas-cloud/pricedex/internal/logger"
	"github.com/kailas-cloud/pricedex/internal/metrics"
)

// Import job defaults.
const (
	DefaultWorkers         = 4
	DefaultTimeout         = 30 * time.Minute
	DefaultCheckpointEvery = 1000
	DefaultReleaseTimeout  = 30 * time.Second
	DefaultMaxFileBytes    = 50 << 20

	// finalSaveTimeout bounds the last status write, which runs after the
	// job context may have expired.
	finalSaveTimeout = 10 * time.Second
)

// Row outcome labels.
const (
	rowsIndexed = "indexed"
	rowsFailed  = "failed"
	rowsSkipped = "skipped"
)

// Config tunes the import worker pool.
type Config struct {
	Workers         int
	Timeout         time.Duration
	CheckpointEvery int
	ReleaseTimeout  time.Duration
	MaxFileBytes    int64
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = DefaultCheckpointEvery
	}
	if c.ReleaseTimeout <= 0 {
		c.ReleaseTimeout = DefaultReleaseTimeout
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = DefaultMaxFileBytes
	}
}

// Service accepts uploads and runs one job per file.
type Service struct {
	parser Parser
	corpus Corpus
	index  Index
	pool   *ants.Pool
	cfg    Config
	logger *zap.Logger
}

// New creates an import service with its worker pool.
func New(parser Parser, corpus Corpus, index Index, cfg Config, logger *zap.Logger) (*Service, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create import pool: %w", err)
	}
	return &Service{
		parser: parser,
		corpus: corpus,
		index:  index,
		pool:   pool,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// MaxFileBytes returns the upload size limit.
func (s *Service) MaxFileBytes() int64 { return s.cfg.MaxFileBytes }

// Submit validates an upload, records a pending import and queues its job.
// The returned import reflects the state at submission time.
func (s *Service) Submit(ctx context.Context, sup supplier.Supplier, filename string, data []byte) (imports.Import, error) {
	if _, err := sheet.FormatOf(filename); err != nil {
		return imports.Import{}, err
	}
	if int64(len(data)) > s.cfg.MaxFileBytes {
		return imports.Import{}, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrPayloadTooLarge, len(data), s.cfg.MaxFileBytes)
	}

	imp, err := imports.New(sup.ID, filename)
	if err != nil {
		return imports.Import{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.corpus.UpsertSupplier(ctx, sup); err != nil {
		return imports.Import{}, fmt.Errorf("upsert supplier: %w", err)
	}
	if err := s.corpus.SaveImport(ctx, &imp); err != nil {
		return imports.Import{}, fmt.Errorf("save import: %w", err)
	}

	job := imp
	if err := s.pool.Submit(func() { s.run(&job, data) }); err != nil {
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			err = fmt.Errorf("%w: %w", domain.ErrImportQueueFull, err)
		}
		imp.Fail(err)
		if saveErr := s.corpus.SaveImport(ctx, &imp); saveErr != nil {
			s.logger.Error("save rejected import", zap.String("import_id", imp.ID), zap.Error(saveErr))
		}
		metrics.ImportJobsTotal.WithLabelValues(string(imports.StatusFailed)).Inc()
		return imports.Import{}, err
	}

	s.logger.Info("import queued",
		zap.String("import_id", imp.ID),
		zap.String("supplier_id", sup.ID),
		zap.String("file", filename),
		zap.Int("bytes", len(data)),
	)
	return imp, nil
}

// Get returns the current state of an import.
func (s *Service) Get(ctx context.Context, id string) (imports.Import, error) {
	imp, err := s.corpus.GetImport(ctx, id)
	if err != nil {
		return imports.Import{}, fmt.Errorf("get import %s: %w", id, err)
	}
	return imp, nil
}

// Running returns the number of jobs currently executing.
func (s *Service) Running() int { return s.pool.Running() }

// Close stops accepting jobs and waits for running ones.
func (s *Service) Close() error {
	return s.pool.ReleaseTimeout(s.cfg.ReleaseTimeout)
}

func (s *Service) run(imp *imports.Import, data []byte) {
	start := time.Now()
	log := s.logger.With(
		zap.String("import_id", imp.ID),
		zap.String("supplier_id", imp.SupplierID),
		zap.String("file", imp.Filename),
	)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	ctx = logpkg.ContextWithLogger(ctx, log)

	if err := s.process(ctx, imp, data, log); err != nil {
		imp.Fail(err)
		log.Error("import failed",
			zap.Error(err),
			zap.Int("processed_rows", imp.ProcessedRows),
			zap.Int("failed_rows", imp.FailedRows),
		)
	} else {
		log.Info("import completed",
			zap.Int("total_rows", imp.TotalRows),
			zap.Int("successful_rows", imp.SuccessfulRows),
			zap.Int("failed_rows", imp.FailedRows),
			zap.Int("new_products", imp.NewProducts),
			zap.Int("updated_products", imp.UpdatedProducts),
			zap.Duration("took", time.Since(start)),
		)
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), finalSaveTimeout)
	defer saveCancel()
	if err := s.corpus.SaveImport(saveCtx, imp); err != nil {
		log.Error("save final import state", zap.Error(err))
	}

	metrics.ImportJobsTotal.WithLabelValues(string(imp.Status)).Inc()
	metrics.ImportJobDuration.Observe(time.Since(start).Seconds())
}

func (s *Service) process(ctx context.Context, imp *imports.Import, data []byte, log *zap.Logger) error {
	if err := imp.Start(); err != nil {
		return err
	}
	if err := s.corpus.SaveImport(ctx, imp); err != nil {
		return fmt.Errorf("save import: %w", err)
	}

	res, err := s.parser.Parse(ctx, imp.Filename, data)
	if res != nil {
		applyParseResult(imp, res)
	}
	if err != nil {
		return err
	}

	existing, err := s.corpus.GetExistingSKUs(ctx, imp.SupplierID)
	if err != nil {
		return fmt.Errorf("load existing skus: %w", err)
	}
	for i := range res.Products {
		if _, ok := existing[res.Products[i].SKU]; ok && res.Products[i].HasSKU() {
			imp.UpdatedProducts++
		} else {
			imp.NewProducts++
		}
	}
	if err := s.corpus.SaveProducts(ctx, imp.SupplierID, imp.ID, res.Products); err != nil {
		return fmt.Errorf("save products: %w", err)
	}

	sinceCheckpoint := 0
	outcomes := s.index.BulkIndex(ctx, imp.SupplierID, imp.ID, res.Products, func(chunk []batch.Outcome) {
		tally := batch.Count(chunk)
		imp.RecordBatch(tally.Indexed, tally.Failed)
		metrics.ImportRowsTotal.WithLabelValues(rowsIndexed).Add(float64(tally.Indexed))
		metrics.ImportRowsTotal.WithLabelValues(rowsFailed).Add(float64(tally.Failed))

		sinceCheckpoint += len(chunk)
		if sinceCheckpoint < s.cfg.CheckpointEvery {
			return
		}
		sinceCheckpoint = 0
		if err := s.corpus.SaveImport(ctx, imp); err != nil {
			log.Warn("save import checkpoint", zap.Error(err))
		}
	})
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("index products: %w", err)
	}

	// Earlier documents are only pruned once every product of this import is
	// live; otherwise a failed document would leave its SKU unsearchable.
	if tally := batch.Count(outcomes); tally.Failed == 0 {
		if n, err := s.index.PruneSupplier(ctx, imp.SupplierID, imp.ID); err != nil {
			log.Warn("prune stale index documents", zap.Error(err))
		} else if n > 0 {
			log.Info("stale index documents pruned", zap.Int("deleted", n))
		}
	} else {
		log.Warn("stale index documents kept after indexing failures", zap.Int("failed", tally.Failed))
	}

	if _, err := s.corpus.MergeTags(ctx, imp.SupplierID, res.Tags); err != nil {
		return fmt.Errorf("merge tags: %w", err)
	}
	imp.GeneratedTags = res.Tags

	return imp.Complete()
}

// applyParseResult copies parse diagnostics and row counters onto the import.
func applyParseResult(imp *imports.Import, res *ingest.Result) {
	imp.TotalRows = res.TotalRows
	imp.Sheets = res.Sheets
	imp.DetectedColumns = res.DetectedColumns
	imp.Stats = res.Stats
	imp.RecordBatch(0, res.FailedRows)
	metrics.ImportRowsTotal.WithLabelValues(rowsFailed).Add(float64(res.FailedRows))
	metrics.ImportRowsTotal.WithLabelValues(rowsSkipped).Add(float64(res.SkippedRows))
}
