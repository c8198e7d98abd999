package columns

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain/field"
	"github.com/kailas-cloud/pricedex/internal/domain/mapping"
	"github.com/kailas-cloud/pricedex/internal/domain/sheet"
)

// Defaults for Config.
const (
	DefaultMinConfidence  = 0.7
	DefaultPositionBonus  = 0.1
	DefaultSampleRows     = 100
	substringConfidence   = 0.9
	advisorConfidence     = DefaultMinConfidence
	defaultAdvisorSamples = 5
)

// Range is an inclusive span of relative column positions.
type Range struct {
	Min, Max float64
}

// Contains reports whether pos lies in [Min, Max].
func (r Range) Contains(pos float64) bool { return pos >= r.Min && pos <= r.Max }

// DefaultPositionHints returns where each field usually sits in a price list.
func DefaultPositionHints() map[field.Type]Range {
	return map[field.Type]Range{
		field.SKU:         {0, 0.3},
		field.Name:        {0.1, 0.5},
		field.Price:       {0.3, 0.9},
		field.Brand:       {0, 0.6},
		field.Category:    {0, 0.4},
		field.Subcategory: {0, 0.5},
		field.Unit:        {0.4, 0.9},
		field.Stock:       {0.5, 1.0},
		field.URL:         {0.7, 1.0},
	}
}

// Config tunes column detection.
type Config struct {
	Synonyms      *SynonymTable
	MinConfidence float64
	Fuzzy         bool
	PositionBonus float64
	PositionHints map[field.Type]Range
	Required      []field.Type
	SampleRows    int
}

// DefaultConfig returns the production detection settings.
func DefaultConfig() Config {
	return Config{
		Synonyms:      DefaultSynonyms(),
		MinConfidence: DefaultMinConfidence,
		Fuzzy:         true,
		PositionBonus: DefaultPositionBonus,
		PositionHints: DefaultPositionHints(),
		Required:      []field.Type{field.Name},
		SampleRows:    DefaultSampleRows,
	}
}

// Advisor suggests a column for a field the heuristics could not map.
// It returns "" when it has no suggestion.
type Advisor interface {
	SuggestColumn(ctx context.Context, ft field.Type, columns []string, samples [][]string) (string, error)
}

// Mapper binds table columns to canonical fields.
type Mapper struct {
	cfg     Config
	advisor Advisor
	logger  *zap.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithAdvisor enables the last-resort advisor for required fields.
func WithAdvisor(a Advisor) Option {
	return func(m *Mapper) { m.advisor = a }
}

// WithLogger sets the mapper logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mapper) { m.logger = l }
}

// NewMapper creates a Mapper. Zero numeric values and nil tables fall back to
// defaults; Fuzzy is taken as given.
func NewMapper(cfg Config, opts ...Option) *Mapper {
	def := DefaultConfig()
	if cfg.Synonyms == nil {
		cfg.Synonyms = def.Synonyms
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.PositionBonus <= 0 {
		cfg.PositionBonus = def.PositionBonus
	}
	if cfg.PositionHints == nil {
		cfg.PositionHints = def.PositionHints
	}
	if cfg.Required == nil {
		cfg.Required = def.Required
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = def.SampleRows
	}
	m := &Mapper{cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Detect maps the table's columns. Fields are claimed greedily in priority
// order; a claimed column is never reconsidered.
func (m *Mapper) Detect(ctx context.Context, t *sheet.Table) mapping.Mapping {
	result := mapping.New()
	normalized := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		normalized[i] = NormalizeName(c)
	}

	for _, ft := range field.Priority() {
		match, ok := m.bestMatch(ft, t.Columns, normalized, result)
		if !ok {
			continue
		}
		if err := result.Assign(ft, match); err != nil {
			m.logger.Debug("column assignment rejected", zap.String("field", ft.String()), zap.Error(err))
			continue
		}
		m.logger.Debug("column detected",
			zap.String("field", ft.String()),
			zap.String("column", match.Column),
			zap.String("method", string(match.Method)),
			zap.Float64("confidence", match.Confidence),
		)
	}

	for _, ft := range m.cfg.Required {
		if result.Has(ft) {
			continue
		}
		if match, ok := m.byContent(ft, t, result); ok {
			if err := result.Assign(ft, match); err == nil {
				m.logger.Info("column detected by content",
					zap.String("field", ft.String()), zap.String("column", match.Column))
				continue
			}
		}
		if m.advisor != nil {
			m.askAdvisor(ctx, ft, t, &result)
		}
	}
	return result
}

func (m *Mapper) bestMatch(ft field.Type, columns, normalized []string, claimed mapping.Mapping) (mapping.Match, bool) {
	synonyms := m.cfg.Synonyms.For(ft)
	hint, hasHint := m.cfg.PositionHints[ft]

	var best mapping.Match
	bestScore := 0.0
	for i, name := range normalized {
		if claimed.Claimed(i) || name == "" {
			continue
		}
		if m.cfg.Synonyms.Contains(ft, name) {
			return mapping.Match{Column: columns[i], Index: i, Confidence: 1, Method: mapping.MethodExact}, true
		}

		for _, syn := range synonyms {
			if strings.Contains(name, syn) || strings.Contains(syn, name) {
				if substringConfidence > bestScore {
					bestScore = substringConfidence
					best = mapping.Match{Column: columns[i], Index: i, Method: mapping.MethodSubstring}
				}
				break
			}
		}

		if !m.cfg.Fuzzy {
			continue
		}
		bonus := 0.0
		if hasHint && hint.Contains(float64(i)/float64(len(columns))) {
			bonus = m.cfg.PositionBonus
		}
		for _, syn := range synonyms {
			score := Similarity(name, syn) + bonus
			if score > bestScore && score >= m.cfg.MinConfidence {
				bestScore = score
				best = mapping.Match{Column: columns[i], Index: i, Method: mapping.MethodFuzzy}
			}
		}
	}
	if bestScore < m.cfg.MinConfidence {
		return mapping.Match{}, false
	}
	best.Confidence = bestScore
	return best, true
}

func (m *Mapper) askAdvisor(ctx context.Context, ft field.Type, t *sheet.Table, result *mapping.Mapping) {
	n := defaultAdvisorSamples
	if len(t.Rows) < n {
		n = len(t.Rows)
	}
	column, err := m.advisor.SuggestColumn(ctx, ft, t.Columns, t.Rows[:n])
	if err != nil {
		m.logger.Warn("column advisor failed", zap.String("field", ft.String()), zap.Error(err))
		return
	}
	idx := t.ColumnIndex(column)
	if column == "" || idx < 0 {
		m.logger.Debug("column advisor had no usable answer",
			zap.String("field", ft.String()), zap.String("answer", column))
		return
	}
	match := mapping.Match{Column: column, Index: idx, Confidence: advisorConfidence, Method: mapping.MethodAdvisor}
	if err := result.Assign(ft, match); err != nil {
		m.logger.Debug("advisor suggestion rejected", zap.String("field", ft.String()), zap.Error(err))
		return
	}
	m.logger.Info("column detected by advisor", zap.String("field", ft.String()), zap.String("column", column))
}
