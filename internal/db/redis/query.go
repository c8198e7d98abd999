package redis

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/pricedex/internal/db"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
)

// minFuzzyRunes is the shortest word rendered with edit-distance tolerance;
// shorter words match literally.
const minFuzzyRunes = 4

// minWildcardRunes is the shortest token eligible for a substring match.
const minWildcardRunes = 3

// buildTextQuery renders every clause as a weighted sub-query and joins them
// into one disjunction. Clauses that render empty are dropped.
func buildTextQuery(q *db.TextQuery) string {
	clauses := q.Query.Clauses()
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		body := renderClause(c, slices.Contains(q.TagFields, c.Field))
		if body == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("(%s)=>{$weight: %s}", body, formatWeight(c.Boost)))
	}
	return strings.Join(parts, " | ")
}

func renderClause(c query.Clause, tagField bool) string {
	switch c.Strategy {
	case query.Term, query.Prefix:
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return ""
		}
		return fmt.Sprintf("@%s:{%s}", c.Field, escapeTag(text))

	case query.Fuzzy:
		words := tokenize(c.Text)
		if len(words) == 0 {
			return ""
		}
		if tagField {
			return buildTagFilter(c.Field, words)
		}
		terms := make([]string, 0, len(words))
		for _, w := range words {
			if utf8.RuneCountInString(w) < minFuzzyRunes {
				terms = append(terms, w)
				continue
			}
			terms = append(terms, "%"+w+"%")
		}
		return fmt.Sprintf("@%s:(%s)", c.Field, strings.Join(terms, "|"))

	case query.Phrase:
		words := tokenize(c.Text)
		if len(words) == 0 {
			return ""
		}
		return fmt.Sprintf(`@%s:("%s")`, c.Field, strings.Join(words, " "))

	case query.Wildcard:
		words := tokenize(c.Text)
		terms := make([]string, 0, len(words))
		for _, w := range words {
			if utf8.RuneCountInString(w) >= minWildcardRunes {
				terms = append(terms, "w'*"+w+"*'")
			}
		}
		if len(terms) == 0 {
			return ""
		}
		return fmt.Sprintf("@%s:(%s)", c.Field, strings.Join(terms, " "))
	}
	return ""
}

// tokenize lower-cases text and splits it on anything that is not a letter
// or a digit, which also strips every query syntax character.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// escapeTag backslash-escapes every rune that would otherwise be read as
// tag query syntax. Letters, digits and underscores pass through.
func escapeTag(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
