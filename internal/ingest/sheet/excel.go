package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX returns every worksheet in workbook order. Cells carry their
// displayed text, so number formats such as zero-padded SKUs survive.
func readXLSX(data []byte) ([]rawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	out := make([]rawSheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		out = append(out, rawSheet{name: name, rows: rows})
	}
	return out, nil
}

// readXLS decodes legacy BIFF workbooks.
func readXLS(data []byte) ([]rawSheet, error) {
	var rs io.ReadSeeker = bytes.NewReader(data)
	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	out := make([]rawSheet, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		rows := make([][]string, 0, int(ws.MaxRow)+1)
		for ri := 0; ri <= int(ws.MaxRow); ri++ {
			row := ws.Row(ri)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for ci := row.FirstCol(); ci < row.LastCol(); ci++ {
				cells[ci] = row.Col(ci)
			}
			rows = append(rows, cells)
		}
		out = append(out, rawSheet{name: ws.Name, rows: rows})
	}
	return out, nil
}
