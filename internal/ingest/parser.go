// Package ingest turns uploaded price-list files into deduplicated, tagged
// product corpora.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/corpus"
	"github.com/kailas-cloud/pricedex/internal/domain/field"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/ingest/columns"
	"github.com/kailas-cloud/pricedex/internal/ingest/extract"
	"github.com/kailas-cloud/pricedex/internal/ingest/sheet"
	"github.com/kailas-cloud/pricedex/internal/ingest/tags"
	"github.com/kailas-cloud/pricedex/internal/logger"
)

// Sheet skip reasons.
const (
	ReasonNoColumns   = "No columns detected"
	ReasonMissingName = "Required column 'name' not found"
)

// Result is the parsed content of one file.
type Result struct {
	Products        []product.Record
	Sheets          []imports.SheetInfo
	Stats           corpus.Stats
	DetectedColumns map[string]string
	Tags            []string
	TotalRows       int
	SkippedRows     int
	FailedRows      int
}

// Parser chains sheet reading, column mapping, extraction, tagging and dedup.
type Parser struct {
	reader    *sheet.Reader
	mapper    *columns.Mapper
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewParser creates a Parser.
func NewParser(reader *sheet.Reader, mapper *columns.Mapper, extractor *extract.Extractor, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{reader: reader, mapper: mapper, extractor: extractor, logger: logger}
}

// Parse processes every sheet of the file. Sheet failures are recorded in
// Result.Sheets; only file-level failures are returned as errors.
func (p *Parser) Parse(ctx context.Context, filename string, data []byte) (*Result, error) {
	tables, err := p.reader.Read(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, domain.ErrNoDataFound
	}

	log := logger.FromContextOr(ctx, p.logger)
	res := &Result{}
	// fileTags sees every extracted product, duplicates included.
	fileTags := tags.NewCollector()
	var (
		all       []product.Record
		seenCols  []string
		anyMapped bool
		processed int
	)

	for i := range tables {
		t := &tables[i]
		res.TotalRows += len(t.Rows)
		seenCols = append(seenCols, t.Columns...)
		info := imports.SheetInfo{Name: t.Name, Rows: len(t.Rows), Status: imports.SheetSkipped}

		if !t.HasHeader() {
			info.Reason = ReasonNoColumns
			res.Sheets = append(res.Sheets, info)
			log.Info("sheet skipped", zap.String("sheet", t.Name), zap.String("reason", info.Reason))
			continue
		}

		m := p.mapper.Detect(ctx, t)
		if m.IsEmpty() {
			info.Reason = ReasonNoColumns
			res.Sheets = append(res.Sheets, info)
			log.Info("sheet skipped", zap.String("sheet", t.Name), zap.String("reason", info.Reason),
				zap.Strings("columns", t.Columns))
			continue
		}
		anyMapped = true
		info.DetectedColumns = m.Detected()
		if !m.Has(field.Name) {
			info.Reason = ReasonMissingName
			res.Sheets = append(res.Sheets, info)
			log.Info("sheet skipped", zap.String("sheet", t.Name), zap.String("reason", info.Reason))
			continue
		}

		ex, err := p.extractor.Extract(ctx, t, m)
		if err != nil {
			return nil, fmt.Errorf("extract sheet %q: %w", t.Name, err)
		}
		res.SkippedRows += ex.Skipped
		res.FailedRows += ex.Failed

		sheetTags := tags.NewCollector()
		for j := range ex.Products {
			rec := &ex.Products[j]
			rec.Tags = tags.Generate(rec)
			sheetTags.Add(rec)
			fileTags.Add(rec)
			if rec.HasSKU() {
				info.ProductsWithSKU++
			}
		}
		info.Status = imports.SheetProcessed
		info.Products = len(ex.Products)
		info.ProductsWithoutSKU = info.Products - info.ProductsWithSKU
		info.UniqueTags = sheetTags.Len()
		res.Sheets = append(res.Sheets, info)
		if res.DetectedColumns == nil {
			res.DetectedColumns = info.DetectedColumns
		}
		processed++
		all = append(all, ex.Products...)

		log.Info("sheet processed",
			zap.String("sheet", t.Name),
			zap.Int("rows", info.Rows),
			zap.Int("products", info.Products),
			zap.Int("products_with_sku", info.ProductsWithSKU),
			zap.Int("unique_tags", info.UniqueTags),
		)
	}

	if processed == 0 {
		if anyMapped {
			return res, &domain.MissingColumnError{Field: field.Name.String(), Columns: seenCols}
		}
		return res, domain.NewNoColumnsDetected(seenCols)
	}
	if len(all) == 0 {
		return res, domain.ErrNoProductsExtracted
	}

	res.Products, res.Stats = tags.Dedup(all)
	res.Tags = fileTags.Tags()

	log.Info("file parsed",
		zap.String("file", filename),
		zap.Int("sheets", len(res.Sheets)),
		zap.Int("total_rows", res.TotalRows),
		zap.Int("unique_products", res.Stats.UniqueProducts),
		zap.Int("duplicate_skus", res.Stats.DuplicateSKUs),
		zap.Int("tags", len(res.Tags)),
	)
	return res, nil
}
