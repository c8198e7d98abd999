package field

import "fmt"

// Type is a canonical semantic role a price-list column can be mapped to.
type Type string

// Canonical field types.
const (
	SKU         Type = "sku"
	Name        Type = "name"
	Brand       Type = "brand"
	Category    Type = "category"
	Subcategory Type = "subcategory"
	Price       Type = "price"
	Unit        Type = "unit"
	Stock       Type = "stock"
	URL         Type = "url"
)

// priority is the fixed order in which the column mapper claims columns.
var priority = []Type{SKU, Name, Brand, Category, Subcategory, Price, Unit, Stock, URL}

// Priority returns all field types in mapping priority order.
func Priority() []Type {
	out := make([]Type, len(priority))
	copy(out, priority)
	return out
}

// IsValid checks if the type is one of the canonical fields.
func (t Type) IsValid() bool {
	for _, p := range priority {
		if p == t {
			return true
		}
	}
	return false
}

// String returns the field name.
func (t Type) String() string { return string(t) }

// Parse validates a field type name.
func Parse(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}
