package search

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pricedex/internal/domain/search/filter"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
)

// Index fields targeted by the query and the filters.
const (
	fieldSupplierID   = "supplier_id"
	fieldSKU          = "sku"
	fieldSKUPrefixes  = "sku_prefixes"
	fieldName         = "name"
	fieldNameTranslit = "name_translit"
	fieldBrand        = "brand"
	fieldBrandText    = "brand_text"
	fieldCategory     = "category"
	fieldCategoryText = "category_text"
	fieldTagsText     = "tags_text"
	fieldRawText      = "raw_text"
	fieldPrice        = "price"
)

// BuildQuery produces the weighted disjunctive query for a search text.
// Clauses are ordered from highest to lowest priority.
func BuildQuery(text string, minScore float64) (query.Query, error) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	upper := strings.ToUpper(text)

	clauses := []query.Clause{
		{Strategy: query.Term, Field: fieldSKU, Text: upper, Boost: 10},
		{Strategy: query.Prefix, Field: fieldSKUPrefixes, Text: upper, Boost: 5},
		{Strategy: query.Term, Field: fieldBrand, Text: lower, Boost: 8},
		{Strategy: query.Fuzzy, Field: fieldBrandText, Text: text, Boost: 6.4},
		{Strategy: query.Fuzzy, Field: fieldName, Text: text, Boost: 3},
		{Strategy: query.Phrase, Field: fieldName, Text: text, Boost: 6},
		{Strategy: query.Fuzzy, Field: fieldNameTranslit, Text: query.Transliterate(text), Boost: 2.7},
		{Strategy: query.Fuzzy, Field: fieldTagsText, Text: lower, Boost: 4},
		{Strategy: query.Fuzzy, Field: fieldCategoryText, Text: text, Boost: 2},
		{Strategy: query.Wildcard, Field: fieldName, Text: text, Boost: 1},
		{Strategy: query.Fuzzy, Field: fieldRawText, Text: text, Boost: 1.5},
	}
	q, err := query.New(text, clauses, minScore)
	if err != nil {
		return query.Query{}, fmt.Errorf("build query: %w", err)
	}
	return q, nil
}

// BuildFilters converts request filters into index filter conditions.
// Brand and category values are lower-cased to match the indexed tags.
func BuildFilters(f request.Filters) (filter.Expression, error) {
	var conds []filter.Condition

	add := func(key string, values []string, lower bool) error {
		if len(values) == 0 {
			return nil
		}
		vals := make([]string, 0, len(values))
		for _, v := range values {
			v = strings.TrimSpace(v)
			if lower {
				v = strings.ToLower(v)
			}
			vals = append(vals, v)
		}
		c, err := filter.NewMatch(key, vals...)
		if err != nil {
			return err
		}
		conds = append(conds, c)
		return nil
	}

	if err := add(fieldSupplierID, f.SupplierIDs, false); err != nil {
		return filter.Expression{}, fmt.Errorf("supplier filter: %w", err)
	}
	if err := add(fieldBrand, f.Brands, true); err != nil {
		return filter.Expression{}, fmt.Errorf("brand filter: %w", err)
	}
	if err := add(fieldCategory, f.Categories, true); err != nil {
		return filter.Expression{}, fmt.Errorf("category filter: %w", err)
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		r, err := filter.NewBounds(f.MinPrice, f.MaxPrice)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("price filter: %w", err)
		}
		c, err := filter.NewRange(fieldPrice, r)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("price filter: %w", err)
		}
		conds = append(conds, c)
	}

	return filter.NewExpression(conds...)
}
