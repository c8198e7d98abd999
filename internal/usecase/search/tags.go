package search

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
)

// Tag aggregation defaults.
const (
	DefaultTagMinCount = 2
	DefaultMaxTags     = 20
	maxNGram           = 3
)

// Relevance levels of a suggested tag against the query.
const (
	relevanceEqual    = 100
	relevancePrefix   = 80
	relevanceContains = 60
	relevanceAllWords = 40
	relevancePartial  = 20
)

// AggregateTags counts 1-3 word n-grams across product names and ranks the
// frequent ones by their relevance to the query. Each n-gram counts once per
// name.
func AggregateTags(queryText string, names []string, minCount, maxTags int) []result.Tag {
	if minCount <= 0 {
		minCount = DefaultTagMinCount
	}
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}

	counts := make(map[string]int)
	for _, name := range names {
		seen := make(map[string]struct{})
		for _, g := range ngrams(tagWords(name)) {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			counts[g]++
		}
	}

	qw := words(queryText)
	q := strings.Join(qw, " ")
	out := make([]result.Tag, 0, len(counts))
	for text, n := range counts {
		if n < minCount {
			continue
		}
		out = append(out, result.Tag{Text: text, Count: n, Relevance: tagRelevance(text, q, qw)})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Text < b.Text
	})
	if len(out) > maxTags {
		out = out[:maxTags]
	}
	return out
}

// tagWords drops single-rune and purely numeric words.
func tagWords(name string) []string {
	all := words(name)
	out := all[:0]
	for _, w := range all {
		if utf8.RuneCountInString(w) < 2 || strings.Trim(w, "0123456789") == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

func ngrams(ws []string) []string {
	var out []string
	for n := 1; n <= maxNGram; n++ {
		for i := 0; i+n <= len(ws); i++ {
			out = append(out, strings.Join(ws[i:i+n], " "))
		}
	}
	return out
}

func tagRelevance(tag, q string, qw []string) float64 {
	if q == "" {
		return 0
	}
	switch {
	case tag == q:
		return relevanceEqual
	case strings.HasPrefix(tag, q):
		return relevancePrefix
	case strings.Contains(tag, q):
		return relevanceContains
	}

	tw := make(map[string]struct{})
	for _, w := range strings.Fields(tag) {
		tw[w] = struct{}{}
	}
	matched := 0
	for _, w := range qw {
		if _, ok := tw[w]; ok {
			matched++
		}
	}
	if matched == len(qw) {
		return relevanceAllWords
	}
	frac := float64(matched) / float64(len(qw))
	return math.Round(relevancePartial*frac*100) / 100
}
