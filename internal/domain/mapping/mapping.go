package mapping

import (
	"fmt"

	"github.com/kailas-cloud/pricedex/internal/domain/field"
)

// Method describes how a column was matched to a field.
type Method string

// Match methods, strongest first.
const (
	MethodExact     Method = "exact"
	MethodSubstring Method = "substring"
	MethodFuzzy     Method = "fuzzy"
	MethodContent   Method = "content"
	MethodAdvisor   Method = "advisor"
)

// Match binds a canonical field to a source column.
type Match struct {
	Column     string
	Index      int
	Confidence float64
	Method     Method
}

// Mapping is a one-to-one assignment of canonical fields to source columns.
type Mapping struct {
	byField  map[field.Type]Match
	byColumn map[int]field.Type
}

// New creates an empty mapping.
func New() Mapping {
	return Mapping{
		byField:  make(map[field.Type]Match),
		byColumn: make(map[int]field.Type),
	}
}

// Assign binds a field to a column. Fails if either side is already taken.
// Confidence is clamped to [0,1].
func (m *Mapping) Assign(ft field.Type, match Match) error {
	if m.byField == nil {
		*m = New()
	}
	if !ft.IsValid() {
		return fmt.Errorf("invalid field type %q", ft)
	}
	if _, ok := m.byField[ft]; ok {
		return fmt.Errorf("field %s already mapped", ft)
	}
	if owner, ok := m.byColumn[match.Index]; ok {
		return fmt.Errorf("column %q already claimed by %s", match.Column, owner)
	}
	match.Confidence = clamp(match.Confidence)
	m.byField[ft] = match
	m.byColumn[match.Index] = ft
	return nil
}

// Get returns the match for a field.
func (m Mapping) Get(ft field.Type) (Match, bool) {
	match, ok := m.byField[ft]
	return match, ok
}

// Has reports whether the field is mapped.
func (m Mapping) Has(ft field.Type) bool {
	_, ok := m.byField[ft]
	return ok
}

// Claimed reports whether the column index is already assigned.
func (m Mapping) Claimed(index int) bool {
	_, ok := m.byColumn[index]
	return ok
}

// Len returns the number of mapped fields.
func (m Mapping) Len() int { return len(m.byField) }

// IsEmpty reports whether nothing was mapped.
func (m Mapping) IsEmpty() bool { return len(m.byField) == 0 }

// Fields returns mapped field types in priority order.
func (m Mapping) Fields() []field.Type {
	out := make([]field.Type, 0, len(m.byField))
	for _, ft := range field.Priority() {
		if _, ok := m.byField[ft]; ok {
			out = append(out, ft)
		}
	}
	return out
}

// Detected returns field -> column name, the shape stored on import records.
func (m Mapping) Detected() map[string]string {
	out := make(map[string]string, len(m.byField))
	for ft, match := range m.byField {
		out[string(ft)] = match.Column
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
