package result

import (
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/search/mode"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// Tier is the application-level match bucket, 1 is best.
type Tier int

// Match tiers. TierUnranked marks fallback hits that were never classified.
const (
	TierUnranked    Tier = 0
	TierAllWords    Tier = 1
	TierAllStems    Tier = 2
	TierAnyWord     Tier = 3
	TierAnyStem     Tier = 4
	TierNoOverlap   Tier = 5
	FallbackScore        = 1.0
	DefaultExamples      = 3
)

var tierLabels = map[Tier]string{
	TierUnranked:  "fallback",
	TierAllWords:  "exact",
	TierAllStems:  "morphological",
	TierAnyWord:   "partial",
	TierAnyStem:   "partial_morphological",
	TierNoOverlap: "related",
}

// Label returns the match_type name of the tier.
func (t Tier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return "unknown"
}

// Hit is a single matched product with its engine score and derived tier.
type Hit struct {
	ID           string         `json:"id"`
	SupplierID   string         `json:"supplier_id"`
	SupplierName string         `json:"supplier_name,omitempty"`
	SupplierINN  string         `json:"supplier_inn,omitempty"`
	Product      product.Record `json:"product"`
	Score        float64        `json:"score"`
	Tier         Tier           `json:"tier"`
}

// Less orders hits by tier ascending, then score descending.
func Less(a, b *Hit) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	return a.Score > b.Score
}

// SupplierResult aggregates the hits of one supplier.
type SupplierResult struct {
	Supplier     supplier.Supplier `json:"supplier"`
	MatchedCount int               `json:"matched_count"`
	MaxScore     float64           `json:"max_score"`
	MatchType    string            `json:"match_type"`
	Examples     []Hit             `json:"examples"`
	Products     []Hit             `json:"products"`
}

// Weight is the secondary supplier sort key.
func (s *SupplierResult) Weight() float64 {
	return s.MaxScore * float64(s.MatchedCount)
}

// Tag is a related-search suggestion aggregated from matched names.
type Tag struct {
	Text      string  `json:"text"`
	Count     int     `json:"count"`
	Relevance float64 `json:"relevance"`
}

// Response is the complete answer to a search request.
type Response struct {
	Query          string           `json:"query"`
	Mode           mode.Mode        `json:"mode"`
	Suppliers      []SupplierResult `json:"suppliers"`
	Tags           []Tag            `json:"tags"`
	Products       []Hit            `json:"products"`
	TotalSuppliers int              `json:"total_suppliers"`
	TotalProducts  int              `json:"total_products"`
	SearchTimeMS   int64            `json:"search_time_ms"`
}
