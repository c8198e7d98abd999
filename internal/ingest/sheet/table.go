package sheet

import (
	"strconv"

	"github.com/kailas-cloud/pricedex/internal/domain/sheet"
)

const unnamedColumn = "unnamed"

// Trim removes fully blank rows and fully blank columns.
func Trim(rows [][]string) [][]string {
	width := 0
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if rowBlank(r) {
			continue
		}
		out = append(out, r)
		if len(r) > width {
			width = len(r)
		}
	}
	if len(out) == 0 {
		return nil
	}

	keep := make([]bool, width)
	kept := 0
	for c := 0; c < width; c++ {
		for _, r := range out {
			if c < len(r) && !isBlank(r[c]) {
				keep[c] = true
				kept++
				break
			}
		}
	}
	if kept == 0 {
		return nil
	}

	for i, r := range out {
		nr := make([]string, 0, kept)
		for c := 0; c < width; c++ {
			if !keep[c] {
				continue
			}
			v := ""
			if c < len(r) {
				v = r[c]
			}
			nr = append(nr, v)
		}
		out[i] = nr
	}
	return out
}

func rowBlank(r []string) bool {
	for _, v := range r {
		if !isBlank(v) {
			return false
		}
	}
	return true
}

// Build creates a table from trimmed rows. headerRow may be sheet.NoHeader,
// in which case the table carries no columns and no rows.
func Build(name string, rows [][]string, headerRow int) sheet.Table {
	t := sheet.Table{Name: name, HeaderRow: headerRow}
	if headerRow < 0 || headerRow >= len(rows) {
		t.HeaderRow = sheet.NoHeader
		return t
	}

	header := rows[headerRow]
	width := len(header)
	for _, r := range rows[headerRow+1:] {
		if len(r) > width {
			width = len(r)
		}
	}

	names := make([]string, width)
	for i := range names {
		if i < len(header) {
			names[i] = header[i]
		}
	}
	t.Columns = UniqueColumns(names)

	t.Rows = make([][]string, 0, len(rows)-headerRow-1)
	for _, r := range rows[headerRow+1:] {
		nr := make([]string, width)
		copy(nr, r)
		t.Rows = append(t.Rows, nr)
	}
	return t
}

// UniqueColumns names blank headers "unnamed" and suffixes duplicates with _1, _2, ...
func UniqueColumns(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	for i, n := range names {
		n = NormalizeCell(n)
		if n == "" {
			n = unnamedColumn
		}
		if taken[n] {
			base := n
			count := seen[base]
			for {
				count++
				n = base + "_" + strconv.Itoa(count)
				if !taken[n] {
					break
				}
			}
			seen[base] = count
		}
		taken[n] = true
		out[i] = n
	}
	return out
}
