package tags

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/pricedex/internal/domain/corpus"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
)

// minWordRunes is the length a name word must exceed to become a tag.
const minWordRunes = 3

// Origin is the product attribute a tag was derived from.
type Origin int

// Tag origins.
const (
	OriginSKU Origin = iota
	OriginBrand
	OriginCategory
	OriginWord
)

type candidate struct {
	text   string
	origin Origin
}

func candidates(p *product.Record) []candidate {
	out := make([]candidate, 0, 8)
	if sku := strings.TrimSpace(p.SKU); sku != "" {
		out = append(out, candidate{sku, OriginSKU})
	}
	if b := normalize(p.Brand); b != "" {
		out = append(out, candidate{b, OriginBrand})
	}
	for _, c := range []string{p.Category, p.Subcategory} {
		if c = normalize(c); c != "" {
			out = append(out, candidate{c, OriginCategory})
		}
	}
	for _, w := range strings.Fields(p.Name) {
		w = normalize(w)
		if utf8.RuneCountInString(w) > minWordRunes && !allDigits(w) {
			out = append(out, candidate{w, OriginWord})
		}
	}
	return out
}

// Generate returns the sorted, unique tag set of a product.
func Generate(p *product.Record) []string {
	seen := make(map[string]struct{})
	for _, c := range candidates(p) {
		seen[c.text] = struct{}{}
	}
	return sortedKeys(seen)
}

// Collector accumulates tags across products, crediting each tag to the
// origin it was first seen with.
type Collector struct {
	seen   map[string]Origin
	counts [OriginWord + 1]int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]Origin)}
}

// Add records the tags of a product.
func (c *Collector) Add(p *product.Record) {
	for _, cand := range candidates(p) {
		if _, ok := c.seen[cand.text]; ok {
			continue
		}
		c.seen[cand.text] = cand.origin
		c.counts[cand.origin]++
	}
}

// Len returns the number of distinct tags.
func (c *Collector) Len() int { return len(c.seen) }

// Count returns how many distinct tags came from origin.
func (c *Collector) Count(o Origin) int { return c.counts[o] }

// Tags returns the sorted tag set.
func (c *Collector) Tags() []string {
	out := make([]string, 0, len(c.seen))
	for t := range c.seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Dedup keeps the first product per SKU; products without a SKU are always
// kept. Tag statistics are computed over the kept products.
func Dedup(products []product.Record) ([]product.Record, corpus.Stats) {
	stats := corpus.Stats{TotalProducts: len(products)}
	bySKU := make(map[string]struct{}, len(products))
	unique := make([]product.Record, 0, len(products))
	collector := NewCollector()

	for i := range products {
		p := &products[i]
		if p.HasSKU() {
			if _, dup := bySKU[p.SKU]; dup {
				stats.DuplicateSKUs++
				continue
			}
			bySKU[p.SKU] = struct{}{}
		} else {
			stats.ProductsWithoutSKU++
		}
		collector.Add(p)
		unique = append(unique, *p)
	}

	stats.UniqueProducts = len(unique)
	stats.TotalTags = collector.Len()
	stats.SKUTags = collector.Count(OriginSKU)
	stats.BrandTags = collector.Count(OriginBrand)
	stats.CategoryTags = collector.Count(OriginCategory)
	stats.WordTags = collector.Count(OriginWord)
	return unique, stats
}

// Union merges two tag sets. The result is sorted and unique, contains every
// input tag, and is unchanged by merging the same tags again.
func Union(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, t := range existing {
		if t != "" {
			seen[t] = struct{}{}
		}
	}
	for _, t := range incoming {
		if t != "" {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
	})
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
