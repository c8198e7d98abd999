package columns

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pricedex/internal/domain/field"
	"github.com/kailas-cloud/pricedex/internal/domain/mapping"
)

// Report renders a human-readable mapping summary with unmapped columns listed last.
func Report(m mapping.Mapping, columns []string) string {
	var b strings.Builder
	b.WriteString("Column Detection Report:\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")
	for _, ft := range field.Priority() {
		match, ok := m.Get(ft)
		if !ok {
			fmt.Fprintf(&b, "✗ %-12s -> NOT FOUND\n", ft)
			continue
		}
		fmt.Fprintf(&b, "✓ %-12s -> '%s' (%s, %.2f)\n", ft, match.Column, match.Method, match.Confidence)
	}

	var unmapped []string
	for i, c := range columns {
		if !m.Claimed(i) {
			unmapped = append(unmapped, c)
		}
	}
	if len(unmapped) > 0 {
		fmt.Fprintf(&b, "unmapped: %s\n", strings.Join(unmapped, ", "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
