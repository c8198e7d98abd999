package columns

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pricedex/internal/domain/field"
	"github.com/kailas-cloud/pricedex/internal/domain/mapping"
	"github.com/kailas-cloud/pricedex/internal/domain/sheet"
)

// Content thresholds.
const (
	skuPatternShare = 0.6
	nameMinAvgLen   = 15
	urlShare        = 0.5
	stockShare      = 0.5
)

var (
	skuValueRe  = regexp.MustCompile(`^[A-Za-zА-Яа-я0-9\-_.]+$`)
	urlSchemeRe = regexp.MustCompile(`https?://`)
	stockTrim   = strings.NewReplacer("<", "", ">", "", " ", "", nbsp, "")
)

const nbsp = "\u00a0"

// byContent picks the unclaimed column whose sample values best fit ft.
// Fields without a content rule never match.
func (m *Mapper) byContent(ft field.Type, t *sheet.Table, claimed mapping.Mapping) (mapping.Match, bool) {
	var best mapping.Match
	bestScore := 0.0
	for i, col := range t.Columns {
		if claimed.Claimed(i) {
			continue
		}
		values := sample(t, i, m.cfg.SampleRows)
		if len(values) == 0 {
			continue
		}
		score, ok := contentScore(ft, values)
		if !ok || score <= bestScore {
			continue
		}
		bestScore = score
		best = mapping.Match{Column: col, Index: i, Confidence: m.cfg.MinConfidence, Method: mapping.MethodContent}
	}
	return best, bestScore > 0
}

// contentScore reports whether values look like ft, with a fit score for
// ranking candidates.
func contentScore(ft field.Type, values []string) (float64, bool) {
	switch ft {
	case field.SKU:
		share := fraction(values, func(v string) bool { return skuValueRe.MatchString(v) })
		return share, share > skuPatternShare
	case field.Name:
		total := 0
		for _, v := range values {
			total += utf8.RuneCountInString(v)
		}
		avg := float64(total) / float64(len(values))
		return avg, avg > nameMinAvgLen
	case field.URL:
		share := fraction(values, func(v string) bool { return urlSchemeRe.MatchString(v) })
		return share, share > urlShare
	case field.Stock:
		share := fraction(values, func(v string) bool {
			_, err := strconv.ParseFloat(stockTrim.Replace(v), 64)
			return err == nil
		})
		return share, share > stockShare
	}
	return 0, false
}

func sample(t *sheet.Table, col, limit int) []string {
	out := make([]string, 0, limit)
	for r := 0; r < len(t.Rows) && r < limit; r++ {
		if v := t.Cell(r, col); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func fraction(values []string, pred func(string) bool) float64 {
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}
