package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minStemRunes is the shortest stem Stem will leave behind.
const minStemRunes = 4

// endings are inflectional suffixes, longest first.
var endings = func() []string {
	e := []string{
		// Russian adjective, noun and participle endings.
		"иями", "ями", "ами", "ого", "его", "ому", "ему", "ыми", "ими",
		"ая", "яя", "ое", "ее", "ые", "ие", "ый", "ий", "ой", "ей",
		"ую", "юю", "ов", "ев", "ом", "ем", "ах", "ях", "ам", "ям",
		"а", "я", "о", "е", "у", "ю", "ы", "и", "ь", "й",
		// English.
		"ing", "ies", "es", "ed", "ly", "s",
	}
	sort.SliceStable(e, func(i, j int) bool {
		return utf8.RuneCountInString(e[i]) > utf8.RuneCountInString(e[j])
	})
	return e
}()

// Stem strips the longest known ending that keeps at least minStemRunes
// runes of the word.
func Stem(word string) string {
	word = strings.ToLower(word)
	n := utf8.RuneCountInString(word)
	for _, e := range endings {
		if !strings.HasSuffix(word, e) {
			continue
		}
		if n-utf8.RuneCountInString(e) >= minStemRunes {
			return strings.TrimSuffix(word, e)
		}
	}
	return word
}

// words splits text into lower-cased letter/digit runs, folding ё to е.
func words(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "ё", "е")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
