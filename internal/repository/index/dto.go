package index

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
)

// SKU prefix lengths stored for partial SKU lookups.
const (
	minSKUPrefix = 3
	maxSKUPrefix = 15
)

// buildHashFields flattens a product into HSET fields. Tag fields carry
// lower-cased values; the *_text fields keep the source spelling.
func buildHashFields(supplierID, importID string, p *product.Record) map[string]string {
	m := map[string]string{
		fieldSupplierID: supplierID,
		fieldName:       p.Name,
		fieldRowNumber:  strconv.Itoa(p.RowNumber),
	}
	putIf(m, fieldImportID, importID)
	if p.Name != "" {
		m[fieldNameTranslit] = query.Transliterate(p.Name)
	}
	if p.SKU != "" {
		m[fieldSKU] = p.SKU
		if prefixes := skuPrefixes(p.SKU); len(prefixes) > 0 {
			m[fieldSKUPrefixes] = strings.Join(prefixes, tagSeparator)
		}
	}
	putText(m, fieldBrand, fieldBrandText, p.Brand)
	putText(m, fieldCategory, fieldCategoryText, p.Category)
	putText(m, fieldSubcategory, fieldSubcategoryText, p.Subcategory)
	if len(p.Tags) > 0 {
		m[fieldTags] = strings.Join(p.Tags, tagSeparator)
		m[fieldTagsText] = strings.Join(p.Tags, " ")
	}
	if p.Price != nil {
		m[fieldPrice] = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	if p.Stock != nil {
		m[fieldStock] = strconv.FormatInt(*p.Stock, 10)
	}
	putIf(m, fieldRawText, p.RawText)
	putIf(m, fieldUnit, p.Unit)
	putIf(m, fieldURL, p.URL)
	putIf(m, fieldSourceSheet, p.SourceSheet)
	return m
}

func putText(m map[string]string, tagField, textField, v string) {
	if v == "" {
		return
	}
	m[tagField] = strings.ToLower(v)
	m[textField] = v
}

func putIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}

// parseHashFields rebuilds a product from the stored hash.
func parseHashFields(m map[string]string) (string, product.Record) {
	rec := product.Record{
		SKU:         m[fieldSKU],
		Name:        m[fieldName],
		Brand:       m[fieldBrandText],
		Category:    m[fieldCategoryText],
		Subcategory: m[fieldSubcategoryText],
		Unit:        m[fieldUnit],
		URL:         m[fieldURL],
		RawText:     m[fieldRawText],
		SourceSheet: m[fieldSourceSheet],
	}
	if v, ok := m[fieldPrice]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			rec.Price = &f
		}
	}
	if v, ok := m[fieldStock]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.Stock = &n
		}
	}
	if v := m[fieldTags]; v != "" {
		rec.Tags = strings.Split(v, tagSeparator)
	}
	if v, ok := m[fieldRowNumber]; ok {
		rec.RowNumber, _ = strconv.Atoi(v)
	}
	return m[fieldSupplierID], rec
}

// skuPrefixes returns the upper-cased leading substrings of sku from 3 up to
// 15 runes long.
func skuPrefixes(sku string) []string {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if strings.Contains(sku, tagSeparator) {
		return nil
	}
	n := utf8.RuneCountInString(sku)
	if n < minSKUPrefix {
		return nil
	}
	runes := []rune(sku)
	out := make([]string, 0, maxSKUPrefix-minSKUPrefix+1)
	for l := minSKUPrefix; l <= n && l <= maxSKUPrefix; l++ {
		out = append(out, string(runes[:l]))
	}
	return out
}

// docKey identifies a product within its supplier. A SKU keeps its key
// across imports so a later import overwrites it; SKU-less products are
// keyed by source sheet and row.
func docKey(prefix, supplierID string, p *product.Record) string {
	if p.SKU != "" {
		return prefix + supplierID + ":" + p.SKU
	}
	return fmt.Sprintf("%s%s:#%s:%d", prefix, supplierID, p.SourceSheet, p.RowNumber)
}
