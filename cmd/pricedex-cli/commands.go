package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pricedex/internal/domain/corpus"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/ingest"
	"github.com/kailas-cloud/pricedex/internal/ingest/columns"
	"github.com/kailas-cloud/pricedex/internal/ingest/extract"
	"github.com/kailas-cloud/pricedex/internal/ingest/sheet"
	openaiAdvisor "github.com/kailas-cloud/pricedex/internal/transport/openai"
)

// parseOutput is the JSON shape of the parse command.
type parseOutput struct {
	File            string              `json:"file"`
	TotalRows       int                 `json:"total_rows"`
	SkippedRows     int                 `json:"skipped_rows"`
	FailedRows      int                 `json:"failed_rows"`
	DetectedColumns map[string]string   `json:"detected_columns,omitempty"`
	Sheets          []imports.SheetInfo `json:"sheets_info"`
	Stats           corpus.Stats        `json:"statistics"`
	Tags            []string            `json:"tags"`
	Products        []product.Record    `json:"products"`
	Error           string              `json:"error,omitempty"`
}

func parseCommand(c *cli.Context) error {
	filename, data, err := readFileArg(c)
	if err != nil {
		return err
	}
	logger := loggerFrom(c)

	mapper, err := buildMapper(c, logger)
	if err != nil {
		return err
	}
	parser := ingest.NewParser(
		sheet.NewReader(sheet.Config{}, logger),
		mapper,
		extract.New(logger),
		logger,
	)

	start := time.Now()
	res, parseErr := parser.Parse(c.Context, filename, data)
	logger.Debug("parse finished", zap.Duration("took", time.Since(start)), zap.Error(parseErr))

	out := parseOutput{File: filepath.Base(filename)}
	if res != nil {
		out.TotalRows = res.TotalRows
		out.SkippedRows = res.SkippedRows
		out.FailedRows = res.FailedRows
		out.DetectedColumns = res.DetectedColumns
		out.Sheets = res.Sheets
		out.Stats = res.Stats
		out.Tags = head(res.Tags, c.Int("tags"))
		out.Products = head(res.Products, c.Int("products"))
	}
	if parseErr != nil {
		out.Error = parseErr.Error()
	}

	w := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else {
		printParse(w, &out)
	}

	if parseErr != nil {
		return cli.Exit(fmt.Sprintf("parse %s: %v", out.File, parseErr), 1)
	}
	return nil
}

func printParse(w io.Writer, out *parseOutput) {
	fmt.Fprintf(w, "%s: %d rows, %d skipped, %d failed\n", out.File, out.TotalRows, out.SkippedRows, out.FailedRows)
	for i, s := range out.Sheets {
		if s.Status == imports.SheetSkipped {
			fmt.Fprintf(w, "  sheet %d %q: skipped (%s)\n", i+1, s.Name, s.Reason)
			continue
		}
		fmt.Fprintf(w, "  sheet %d %q: %d rows, %d products (%d with sku), %d tags\n",
			i+1, s.Name, s.Rows, s.Products, s.ProductsWithSKU, s.UniqueTags)
	}
	if out.Error != "" {
		return
	}

	st := out.Stats
	fmt.Fprintf(w, "products: %d unique of %d, %d duplicate skus, %d without sku\n",
		st.UniqueProducts, st.TotalProducts, st.DuplicateSKUs, st.ProductsWithoutSKU)
	fmt.Fprintf(w, "tags: %d (sku %d, brand %d, category %d, word %d)\n",
		st.TotalTags, st.SKUTags, st.BrandTags, st.CategoryTags, st.WordTags)
	if len(out.Tags) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(out.Tags, ", "))
	}
	for _, p := range out.Products {
		price := "-"
		if p.Price != nil {
			price = fmt.Sprintf("%.2f", *p.Price)
		}
		fmt.Fprintf(w, "  [%s:%d] %-12s %s  %s\n", p.SourceSheet, p.RowNumber, p.SKU, p.Name, price)
	}
}

func columnsCommand(c *cli.Context) error {
	filename, data, err := readFileArg(c)
	if err != nil {
		return err
	}
	logger := loggerFrom(c)

	mapper, err := buildMapper(c, logger)
	if err != nil {
		return err
	}
	tables, err := sheet.NewReader(sheet.Config{}, logger).Read(c.Context, filename, data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("read %s: %v", filename, err), 1)
	}

	w := c.App.Writer
	for i := range tables {
		t := &tables[i]
		fmt.Fprintf(w, "Sheet %q (%d rows)\n", t.Name, len(t.Rows))
		if !t.HasHeader() {
			fmt.Fprintln(w, "no header detected")
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, columns.Report(mapper.Detect(c.Context, t), t.Columns))
		fmt.Fprintln(w)
	}
	return nil
}

func readFileArg(c *cli.Context) (string, []byte, error) {
	if c.NArg() != 1 {
		return "", nil, cli.Exit("exactly one FILE argument is required", 2)
	}
	filename := c.Args().First()
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return "", nil, cli.Exit(fmt.Sprintf("read %s: %v", filename, err), 1)
	}
	return filename, data, nil
}

func buildMapper(c *cli.Context, logger *zap.Logger) (*columns.Mapper, error) {
	synonyms := columns.DefaultSynonyms()
	if extra := c.StringSlice("synonym"); len(extra) > 0 {
		overrides := make(map[string][]string, len(extra))
		for _, kv := range extra {
			ft, name, ok := strings.Cut(kv, "=")
			if !ok || name == "" {
				return nil, cli.Exit(fmt.Sprintf("invalid --synonym %q, want field=name", kv), 2)
			}
			overrides[ft] = append(overrides[ft], name)
		}
		if err := synonyms.Merge(overrides); err != nil {
			return nil, cli.Exit(err.Error(), 2)
		}
	}

	cfg := columns.DefaultConfig()
	cfg.Synonyms = synonyms
	cfg.Fuzzy = !c.Bool("no-fuzzy")

	opts := []columns.Option{columns.WithLogger(logger)}
	if model := c.String("advisor-model"); model != "" {
		opts = append(opts, columns.WithAdvisor(openaiAdvisor.NewAdvisor(&openaiAdvisor.Config{
			APIKey:  c.String("advisor-key"),
			BaseURL: c.String("advisor-url"),
			Model:   model,
			Logger:  logger,
		})))
	}
	return columns.NewMapper(cfg, opts...), nil
}

func head[T any](s []T, n int) []T {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
