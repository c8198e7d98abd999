package sheet

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const nbsp = "\u00a0"

// NormalizeCell applies NFKC, turns non-breaking spaces into spaces and trims.
// NFKC folds full-width digits and ligatures that some exporters emit.
func NormalizeCell(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, nbsp, " ")
	return strings.TrimSpace(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(strings.ReplaceAll(s, nbsp, " ")) == ""
}
