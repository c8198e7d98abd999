package sheet

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultHeaderScan is the number of leading rows inspected for a header.
const DefaultHeaderScan = 50

// headerKeywords are substrings typical of price-list header cells.
var headerKeywords = []string{
	"артикул", "sku", "код", "article", "арт", "код товара", "vendor", "партномер",
	"код для заказа", "каталожный номер", "item", "part number",
	"наименование", "название", "name", "товар", "продукт", "описание",
	"номенклатура", "материал", "наименование товара",
	"цена", "price", "стоимость", "прайс", "ррц", "розница", "опт",
	"бренд", "brand", "производитель", "марка", "manufacturer", "завод",
	"категория", "category", "группа", "раздел", "тип", "вид", "рубрика",
	"подгруппа", "подкатегория", "subcategory",
	"единица", "unit", "ед", "ед.изм", "единица измерения",
	"остаток", "stock", "наличие", "количество", "qty", "available", "склад",
	"url", "ссылка", "link", "href",
}

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// DetectHeader returns the index of the most header-like row among the first
// maxScan rows, or -1 when no row qualifies. Ties keep the earliest row.
func DetectHeader(rows [][]string, maxScan int) int {
	if maxScan <= 0 {
		maxScan = DefaultHeaderScan
	}
	best, bestScore := -1, 0.0
	for i := 0; i < len(rows) && i < maxScan; i++ {
		score, ok := scoreHeaderRow(rows[i])
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func scoreHeaderRow(row []string) (float64, bool) {
	if len(row) == 0 {
		return 0, false
	}
	values := make([]string, 0, len(row))
	for _, v := range row {
		if !isBlank(v) {
			values = append(values, strings.ToLower(NormalizeCell(v)))
		}
	}
	if len(values) == 0 {
		return 0, false
	}

	fill := float64(len(values)) / float64(len(row))
	if fill < 0.2 {
		return 0, false
	}
	score := fill * 10

	matches := 0
	totalLen := 0
	numeric := 0
	for _, v := range values {
		clean := punctRe.ReplaceAllString(v, "")
		for _, kw := range headerKeywords {
			if strings.Contains(clean, kw) {
				matches++
				break
			}
		}
		totalLen += utf8.RuneCountInString(v)
		if looksNumeric(v) {
			numeric++
		}
	}
	score += float64(matches) * 20

	avg := float64(totalLen) / float64(len(values))
	switch {
	case avg > 3 && avg < 40:
		score += 10
	case avg > 60:
		score -= 20
	}

	if float64(numeric)/float64(len(values)) < 0.4 {
		score += 15
	} else {
		score -= 10
	}
	return score, true
}

func looksNumeric(s string) bool {
	s = strings.NewReplacer(",", ".", " ", "", nbsp, "").Replace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
