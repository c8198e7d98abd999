package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	utf8BOM     = []byte{0xEF, 0xBB, 0xBF}
	multiSpace  = regexp.MustCompile(`\t|\s{2,}`)
	lineBreaker = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// DecodeText strips a UTF-8 BOM and decodes Windows-1251 when the bytes are not valid UTF-8.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1251: %w", err)
	}
	return string(decoded), nil
}

// SniffDelimiter picks ',' if the first line has one, else ';', else tab.
func SniffDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	switch {
	case strings.Contains(first, ","):
		return ','
	case strings.Contains(first, ";"):
		return ';'
	default:
		return '\t'
	}
}

func readCSV(data []byte, name string) ([]rawSheet, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = SniffDelimiter(text)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return []rawSheet{{name: name, rows: rows}}, nil
}

// readTXT splits on tabs when any line has one, otherwise on runs of spaces.
func readTXT(data []byte, name string) ([]rawSheet, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(lineBreaker.Replace(text), "\n")

	tabbed := strings.Contains(text, "\t")
	wide := false
	if !tabbed {
		for _, l := range lines {
			if len(multiSpace.Split(strings.TrimSpace(l), -1)) > 1 {
				wide = true
				break
			}
		}
	}

	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		switch {
		case tabbed:
			rows = append(rows, strings.Split(l, "\t"))
		case wide:
			rows = append(rows, splitColumns(l))
		default:
			rows = append(rows, strings.Fields(l))
		}
	}
	return []rawSheet{{name: name, rows: rows}}, nil
}

// splitColumns splits a layout-preserved text line on tabs or 2+ spaces.
func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return multiSpace.Split(line, -1)
}
