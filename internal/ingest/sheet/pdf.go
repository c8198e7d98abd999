package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// readPDF extracts the text layer of the first maxPages pages, one table per page.
func readPDF(ctx context.Context, data []byte, maxPages int) ([]rawSheet, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = doc.Close() }()

	pages := doc.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	out := make([]rawSheet, 0, pages)
	for n := 0; n < pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n+1, err)
		}
		out = append(out, rawSheet{name: "page_" + strconv.Itoa(n+1), rows: pageRows(text)})
	}
	return out, nil
}

func pageRows(text string) [][]string {
	lines := strings.Split(lineBreaker.Replace(text), "\n")
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, splitColumns(l))
	}
	return rows
}
