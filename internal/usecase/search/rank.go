package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// minOverlapRunes is the shortest stem allowed to match by prefix.
const minOverlapRunes = 3

// Tier classifies how closely a product name covers the query words.
func Tier(queryText, name string) result.Tier {
	qw := words(queryText)
	nw := words(name)
	if len(qw) == 0 || len(nw) == 0 {
		return result.TierNoOverlap
	}

	literal := make(map[string]struct{}, len(nw))
	nameStems := make([]string, 0, len(nw))
	for _, w := range nw {
		literal[w] = struct{}{}
		nameStems = append(nameStems, Stem(w))
	}

	var literalHits, stemHits int
	for _, w := range qw {
		if _, ok := literal[w]; ok {
			literalHits++
		}
		if stemOverlaps(Stem(w), nameStems) {
			stemHits++
		}
	}

	switch {
	case literalHits == len(qw):
		return result.TierAllWords
	case len(qw) >= 2 && stemHits == len(qw):
		return result.TierAllStems
	case literalHits > 0:
		return result.TierAnyWord
	case stemHits > 0:
		return result.TierAnyStem
	default:
		return result.TierNoOverlap
	}
}

func stemOverlaps(stem string, candidates []string) bool {
	for _, c := range candidates {
		if c == stem {
			return true
		}
		short, long := stem, c
		if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
			short, long = long, short
		}
		if utf8.RuneCountInString(short) >= minOverlapRunes && strings.HasPrefix(long, short) {
			return true
		}
	}
	return false
}

// SortHits orders hits by tier, then score.
func SortHits(hits []result.Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return result.Less(&hits[i], &hits[j])
	})
}

// GroupBySupplier aggregates hits per supplier and keeps up to k examples
// each. Suppliers are ordered by rating, then by max score times matched count.
// Suppliers missing from profiles get a bare profile.
func GroupBySupplier(hits []result.Hit, profiles map[string]supplier.Supplier, k int) []result.SupplierResult {
	if k <= 0 {
		k = result.DefaultExamples
	}

	groups := make(map[string]*result.SupplierResult)
	var order []string
	for i := range hits {
		h := hits[i]
		g, ok := groups[h.SupplierID]
		if !ok {
			prof, found := profiles[h.SupplierID]
			if !found {
				prof = supplier.Supplier{ID: h.SupplierID}
			}
			g = &result.SupplierResult{Supplier: prof}
			groups[h.SupplierID] = g
			order = append(order, h.SupplierID)
		}
		g.Products = append(g.Products, h)
		g.MatchedCount++
		if h.Score > g.MaxScore {
			g.MaxScore = h.Score
		}
	}

	out := make([]result.SupplierResult, 0, len(order))
	for _, id := range order {
		g := groups[id]
		SortHits(g.Products)
		g.MatchType = g.Products[0].Tier.Label()
		n := min(k, len(g.Products))
		g.Examples = append([]result.Hit(nil), g.Products[:n]...)
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Supplier.Rating != b.Supplier.Rating {
			return a.Supplier.Rating > b.Supplier.Rating
		}
		if wa, wb := a.Weight(), b.Weight(); wa != wb {
			return wa > wb
		}
		return a.Supplier.ID < b.Supplier.ID
	})
	return out
}
