package product

// Record is a normalized product extracted from one price-list row.
// Empty strings mean the field was absent in the source.
type Record struct {
	SKU         string   `json:"sku,omitempty"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int64   `json:"stock,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	URL         string   `json:"url,omitempty"`
	RawText     string   `json:"raw_text,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SourceSheet string   `json:"source_sheet,omitempty"`
	RowNumber   int      `json:"row_number"`
}

// HasSKU reports whether the product carries a SKU (dedup key).
func (r *Record) HasSKU() bool { return r.SKU != "" }

// HasPrice reports whether the price was parsed.
func (r *Record) HasPrice() bool { return r.Price != nil }
