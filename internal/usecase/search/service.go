package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/search/mode"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
	"github.com/kailas-cloud/pricedex/internal/metrics"
)

// Search defaults.
const (
	DefaultMinScore  = 0.5
	DefaultIndexSize = 1000
)

// Fallback reasons.
const (
	fallbackError = "error"
	fallbackEmpty = "empty"
)

// Config tunes ranking and aggregation.
type Config struct {
	MinScore    float64
	IndexSize   int
	Examples    int
	TagMinCount int
	MaxTags     int
}

func (c *Config) applyDefaults() {
	if c.MinScore < 0 {
		c.MinScore = DefaultMinScore
	}
	if c.IndexSize <= 0 {
		c.IndexSize = DefaultIndexSize
	}
	if c.Examples <= 0 {
		c.Examples = result.DefaultExamples
	}
	if c.TagMinCount <= 0 {
		c.TagMinCount = DefaultTagMinCount
	}
	if c.MaxTags <= 0 {
		c.MaxTags = DefaultMaxTags
	}
}

// DefaultConfig returns the production search settings.
func DefaultConfig() Config {
	c := Config{MinScore: DefaultMinScore}
	c.applyDefaults()
	return c
}

// Service answers supplier search requests from the index, falling back to
// the corpus store when the index fails or finds nothing.
type Service struct {
	index  Index
	corpus Corpus
	cfg    Config
	logger *zap.Logger
}

// New creates a search service.
func New(index Index, corpus Corpus, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, corpus: corpus, cfg: cfg, logger: logger}
}

// Search runs a request. Backend failures are logged and degrade to the
// fallback path; only invalid requests return an error.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	start := time.Now()

	q, err := BuildQuery(req.Query(), s.cfg.MinScore)
	if err != nil {
		return result.Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	filters, err := BuildFilters(req.Filters())
	if err != nil {
		return result.Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	m := mode.Index
	hits, err := s.index.Search(ctx, q, filters, s.cfg.IndexSize)
	switch {
	case err != nil:
		s.logger.Warn("search index failed, using corpus fallback",
			zap.String("query", req.Query()), zap.Error(err))
		hits, m = s.fallback(ctx, req, fallbackError), mode.Fallback
	case len(hits) == 0:
		hits, m = s.fallback(ctx, req, fallbackEmpty), mode.Fallback
	default:
		for i := range hits {
			hits[i].Tier = Tier(req.Query(), hits[i].Product.Name)
		}
	}

	profiles := s.profiles(ctx, hits)
	for i := range hits {
		if p, ok := profiles[hits[i].SupplierID]; ok {
			hits[i].SupplierName = p.Name
			hits[i].SupplierINN = p.INN
		}
	}

	suppliers := GroupBySupplier(hits, profiles, s.cfg.Examples)

	names := make([]string, len(hits))
	for i := range hits {
		names[i] = hits[i].Product.Name
	}
	tags := AggregateTags(req.Query(), names, s.cfg.TagMinCount, s.cfg.MaxTags)

	SortHits(hits)
	total := len(hits)
	if len(hits) > req.Limit() {
		hits = hits[:req.Limit()]
	}

	elapsed := time.Since(start)
	metrics.SearchRequestsTotal.WithLabelValues(string(m)).Inc()
	metrics.SearchDuration.WithLabelValues(string(m)).Observe(elapsed.Seconds())

	s.logger.Debug("search served",
		zap.String("query", req.Query()),
		zap.String("mode", string(m)),
		zap.Int("products", total),
		zap.Int("suppliers", len(suppliers)),
	)

	return result.Response{
		Query:          req.Query(),
		Mode:           m,
		Suppliers:      suppliers,
		Tags:           tags,
		Products:       hits,
		TotalSuppliers: len(suppliers),
		TotalProducts:  total,
		SearchTimeMS:   elapsed.Milliseconds(),
	}, nil
}

func (s *Service) fallback(ctx context.Context, req *request.Request, reason string) []result.Hit {
	metrics.SearchFallbacksTotal.WithLabelValues(reason).Inc()
	hits, err := s.corpus.Match(ctx, req.Query(), req.Filters(), s.cfg.IndexSize)
	if err != nil {
		s.logger.Error("corpus fallback failed", zap.String("query", req.Query()), zap.Error(err))
		return nil
	}
	return hits
}

func (s *Service) profiles(ctx context.Context, hits []result.Hit) map[string]supplier.Supplier {
	seen := make(map[string]struct{})
	var ids []string
	for i := range hits {
		id := hits[i].SupplierID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	profiles, err := s.corpus.Suppliers(ctx, ids)
	if err != nil {
		s.logger.Warn("load supplier profiles", zap.Error(err))
		return nil
	}
	return profiles
}
