package db

import "fmt"

// FieldKind is the FT schema type of an indexed hash field.
type FieldKind int

// Field kinds.
const (
	KindText FieldKind = iota + 1
	KindTag
	KindNumeric
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindTag:
		return "TAG"
	case KindNumeric:
		return "NUMERIC"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// Field is one indexed attribute of a hash. Hash fields that are only
// stored are not listed in a schema.
type Field struct {
	Name string
	Kind FieldKind

	Weight    float64 // text only; 0 keeps the server default of 1
	Separator string  // tag only; empty keeps ","
	Sortable  bool    // numeric only
}

// Text declares a full-text field.
func Text(name string, weight float64) Field {
	return Field{Name: name, Kind: KindText, Weight: weight}
}

// Tag declares an exact-match tag field.
func Tag(name, separator string) Field {
	return Field{Name: name, Kind: KindTag, Separator: separator}
}

// Numeric declares a range-filterable numeric field.
func Numeric(name string, sortable bool) Field {
	return Field{Name: name, Kind: KindNumeric, Sortable: sortable}
}

// Schema is an FT index over every hash whose key starts with Prefix.
type Schema struct {
	Name     string
	Prefix   string
	Language string
	Fields   []Field
}

// NewSchema validates and creates a Schema.
func NewSchema(name, prefix, language string, fields ...Field) (*Schema, error) {
	s := &Schema{Name: name, Prefix: prefix, Language: language, Fields: fields}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the schema for missing names, duplicates and options
// given to the wrong field kind.
func (s *Schema) Validate() error {
	if !IsValidIdentifier(s.Name) {
		return fmt.Errorf("invalid index name %q", s.Name)
	}
	if s.Prefix == "" {
		return fmt.Errorf("index %s: key prefix is required", s.Name)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("index %s: no fields", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("index %s: field %d has no name", s.Name, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("index %s: duplicate field %s", s.Name, f.Name)
		}
		seen[f.Name] = struct{}{}

		switch {
		case f.Kind < KindText || f.Kind > KindNumeric:
			return fmt.Errorf("field %s: unknown kind %d", f.Name, int(f.Kind))
		case f.Weight < 0:
			return fmt.Errorf("field %s: negative weight", f.Name)
		case f.Weight != 0 && f.Kind != KindText:
			return fmt.Errorf("field %s: weight on %s field", f.Name, f.Kind)
		case f.Separator != "" && f.Kind != KindTag:
			return fmt.Errorf("field %s: separator on %s field", f.Name, f.Kind)
		case f.Sortable && f.Kind != KindNumeric:
			return fmt.Errorf("field %s: sortable %s field", f.Name, f.Kind)
		}
	}
	return nil
}

// Lookup returns the field named name.
func (s *Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names lists the fields of the given kind in schema order.
func (s *Schema) Names(kind FieldKind) []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == kind {
			out = append(out, f.Name)
		}
	}
	return out
}

// IsValidIdentifier reports whether s is a non-empty run of ASCII letters,
// digits and the characters _ : -.
func IsValidIdentifier(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return s != ""
}
