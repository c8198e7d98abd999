package sheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/sheet"
)

// Format is a supported price-list file format.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
	FormatPDF  Format = "pdf"
)

// Defaults for Config.
const (
	DefaultMaxRows     = 100000
	DefaultPDFMaxPages = 50
)

// FormatOf resolves the format from the file extension.
func FormatOf(filename string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch Format(ext) {
	case FormatXLSX, FormatXLS, FormatCSV, FormatTXT, FormatPDF:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(filename))
}

// Config holds sheet extraction limits.
type Config struct {
	MaxRows       int // per file, across all sheets
	MaxHeaderScan int
	PDFMaxPages   int
}

// rawSheet is the untrimmed output of a format decoder.
type rawSheet struct {
	name string
	rows [][]string
}

// Reader turns file bytes into header-detected tables.
type Reader struct {
	cfg    Config
	logger *zap.Logger
}

// NewReader creates a Reader. Zero config values fall back to defaults.
func NewReader(cfg Config, logger *zap.Logger) *Reader {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = DefaultMaxRows
	}
	if cfg.MaxHeaderScan <= 0 {
		cfg.MaxHeaderScan = DefaultHeaderScan
	}
	if cfg.PDFMaxPages <= 0 {
		cfg.PDFMaxPages = DefaultPDFMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{cfg: cfg, logger: logger}
}

// Read decodes every sheet of the file. Blank sheets are dropped silently;
// sheets without a detectable header are returned with HeaderRow == sheet.NoHeader.
func (r *Reader) Read(ctx context.Context, filename string, data []byte) ([]sheet.Table, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	var raws []rawSheet
	switch format {
	case FormatXLSX:
		raws, err = readXLSX(data)
	case FormatXLS:
		raws, err = readXLS(data)
	case FormatCSV:
		raws, err = readCSV(data, stem(filename))
	case FormatTXT:
		raws, err = readTXT(data, stem(filename))
	case FormatPDF:
		raws, err = readPDF(ctx, data, r.cfg.PDFMaxPages)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}

	budget := r.cfg.MaxRows
	tables := make([]sheet.Table, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if budget <= 0 {
			r.logger.Warn("row limit reached, remaining sheets ignored",
				zap.String("file", filename), zap.Int("max_rows", r.cfg.MaxRows))
			break
		}

		rows := normalizeRows(raw.rows)
		rows = Trim(rows)
		if len(rows) == 0 {
			r.logger.Debug("empty sheet dropped", zap.String("sheet", raw.name))
			continue
		}

		header := DetectHeader(rows, r.cfg.MaxHeaderScan)
		t := Build(raw.name, rows, header)
		if len(t.Rows) > budget {
			t.Rows = t.Rows[:budget]
		}
		budget -= len(t.Rows)

		r.logger.Debug("sheet decoded",
			zap.String("sheet", raw.name),
			zap.Int("header_row", t.HeaderRow),
			zap.Int("rows", len(t.Rows)),
			zap.Strings("columns", t.Columns),
		)
		tables = append(tables, t)
	}
	return tables, nil
}

func normalizeRows(rows [][]string) [][]string {
	for _, row := range rows {
		for i, v := range row {
			row[i] = NormalizeCell(v)
		}
	}
	return rows
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
