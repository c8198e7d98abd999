package extract

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/field"
	"github.com/kailas-cloud/pricedex/internal/domain/mapping"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/sheet"
)

// cancelCheckEvery is how many rows are processed between context checks.
const cancelCheckEvery = 1000

const nbsp = "\u00a0"

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	urlRe      = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
	currencyRe = regexp.MustCompile(`[\p{L}\p{Sc}]`)

	priceTrim = strings.NewReplacer(" ", "", nbsp, "", "\t", "")
	stockTrim = strings.NewReplacer("<", "", ">", "", " ", "", nbsp, "")
)

// Result holds the products of one table and row counters.
type Result struct {
	Products  []product.Record
	Total     int
	Extracted int
	Skipped   int
	Failed    int
}

// Extractor turns mapped table rows into product records.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract builds products from every data row. Rows without a name are
// skipped; rows that fail to build are counted and never abort the table.
func (e *Extractor) Extract(ctx context.Context, t *sheet.Table, m mapping.Mapping) (Result, error) {
	if !m.Has(field.Name) {
		return Result{}, &domain.MissingColumnError{Field: field.Name.String(), Columns: t.Columns}
	}

	res := Result{Total: len(t.Rows), Products: make([]product.Record, 0, len(t.Rows))}
	for i, row := range t.Rows {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		rec, ok, err := e.buildRow(t.Name, i, row, m)
		switch {
		case err != nil:
			res.Failed++
			e.logger.Warn("row skipped",
				zap.String("sheet", t.Name), zap.Int("row", i+1), zap.Error(err))
		case !ok:
			res.Skipped++
		default:
			res.Extracted++
			res.Products = append(res.Products, rec)
		}
	}
	return res, nil
}

func (e *Extractor) buildRow(sheetName string, idx int, row []string, m mapping.Mapping) (rec product.Record, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, ok, err = product.Record{}, false, fmt.Errorf("panic: %v", r)
		}
	}()

	cell := func(ft field.Type) string {
		match, found := m.Get(ft)
		if !found || match.Index < 0 || match.Index >= len(row) {
			return ""
		}
		return clean(row[match.Index])
	}

	name := cell(field.Name)
	if name == "" {
		return product.Record{}, false, nil
	}

	rec = product.Record{
		SKU:         cell(field.SKU),
		Name:        name,
		Brand:       cell(field.Brand),
		Category:    cell(field.Category),
		Subcategory: cell(field.Subcategory),
		Unit:        cell(field.Unit),
		SourceSheet: sheetName,
		RowNumber:   idx + 1,
	}
	if v, parsed := ParsePrice(cell(field.Price)); parsed {
		rec.Price = &v
	}
	if v, parsed := ParseStock(cell(field.Stock)); parsed {
		rec.Stock = &v
	}
	rec.URL = FindURL(row)
	rec.RawText = RawText(row)
	return rec, true, nil
}

// clean collapses whitespace and treats "nan" placeholders as empty.
func clean(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// ParsePrice parses a price cell such as "1 234,56 ₽".
func ParsePrice(s string) (float64, bool) {
	s = priceTrim.Replace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = currencyRe.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseStock parses a stock cell, tolerating "<"/">" prefixes, and truncates
// fractional values.
func ParseStock(s string) (int64, bool) {
	s = strings.ReplaceAll(stockTrim.Replace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(v), true
}

// FindURL returns the first http(s) URL found in the row's cells.
func FindURL(row []string) string {
	for _, v := range row {
		if u := urlRe.FindString(v); u != "" {
			return u
		}
	}
	return ""
}

// RawText joins the row's non-empty cells with single spaces.
func RawText(row []string) string {
	parts := make([]string, 0, len(row))
	for _, v := range row {
		if v = clean(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
