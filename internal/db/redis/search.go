package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pricedex/internal/db"
	"github.com/kailas-cloud/pricedex/internal/domain/search/filter"
)

// SearchText runs a scored multi-clause text search via FT.SEARCH.
// Filters are AND-ed in front of the clause disjunction and do not score.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	textPart := buildTextQuery(q)
	if textPart == "" {
		return &db.SearchResult{}, nil
	}
	queryStr := textPart
	if filterStr := buildFilter(q.Filters); filterStr != "" {
		queryStr = fmt.Sprintf("%s (%s)", filterStr, textPart)
	}

	scorer := q.Scorer
	if scorer == "" {
		scorer = db.ScorerTFIDF
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(
		q.IndexName, queryStr,
		"WITHSCORES",
		"SCORER", string(scorer),
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrapErr(db.OpSearch, err)
	}

	return parseScoredResult(raw)
}

// SearchKeys lists the keys of documents matching the filter via FT.SEARCH NOCONTENT.
func (s *Store) SearchKeys(ctx context.Context, q *db.KeysQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	queryStr := buildFilter(q.Filters)
	if queryStr == "" {
		queryStr = "*"
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(
		q.IndexName, queryStr,
		"NOCONTENT",
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrapErr(db.OpSearch, err)
	}

	return parseKeysResult(raw)
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseKeysResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	// 1-stride: [total, key1, key2, ...]
	entries := make([]db.SearchEntry, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		key, err := msg.ToString()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter renders a filter.Expression as an FT.SEARCH pre-filter.
// Juxtaposed clauses intersect.
func buildFilter(expr filter.Expression) string {
	conds := expr.Conditions()
	if len(conds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conds))
	for _, cond := range conds {
		switch {
		case cond.IsMatch() && cond.IsExclude():
			parts = append(parts, "-"+buildTagFilter(cond.Key(), cond.Values()))
		case cond.IsMatch():
			parts = append(parts, buildTagFilter(cond.Key(), cond.Values()))
		case cond.IsRange():
			parts = append(parts, buildNumericFilter(cond.Key(), *cond.Range()))
		}
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, escapeTag(v))
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, r filter.Range) string {
	lo, hi := "-inf", "+inf"
	if r.Min() != nil {
		lo = strconv.FormatFloat(*r.Min(), 'f', -1, 64)
	}
	if r.Max() != nil {
		hi = strconv.FormatFloat(*r.Max(), 'f', -1, 64)
	}
	return fmt.Sprintf("@%s:[%s %s]", key, lo, hi)
}
