package columns

import (
	"regexp"
	"strings"

	"github.com/xrash/smetrics"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// NormalizeName lower-cases a header, collapses whitespace and drops
// punctuation, keeping letters, digits, underscores and spaces.
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	return punctRe.ReplaceAllString(s, "")
}

// Similarity returns a matching ratio in [0,1]: 2*common/(len(a)+len(b)),
// where common is derived from the insert/delete edit distance.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	ea, eb := encodePair(ra, rb)
	// Substitution costs the same as delete+insert, so the distance counts
	// exactly the runes outside the longest common subsequence.
	d := smetrics.WagnerFischer(ea, eb, 1, 1, 2)
	return 1 - float64(d)/float64(total)
}

// encodePair maps the runes of both strings onto single bytes so the
// byte-oriented edit distance compares characters, not UTF-8 units.
func encodePair(a, b []rune) (string, string) {
	alphabet := make(map[rune]byte, len(a)+len(b))
	encode := func(rs []rune) string {
		out := make([]byte, len(rs))
		for i, r := range rs {
			c, ok := alphabet[r]
			if !ok {
				c = byte(len(alphabet) % 256)
				alphabet[r] = c
			}
			out[i] = c
		}
		return string(out)
	}
	return encode(a), encode(b)
}
