package corpus

// Stats summarizes a deduplicated supplier corpus for observability.
type Stats struct {
	TotalProducts      int `json:"total_products"`
	UniqueProducts     int `json:"unique_products"`
	DuplicateSKUs      int `json:"duplicate_skus"`
	ProductsWithoutSKU int `json:"products_without_sku"`
	TotalTags          int `json:"total_tags"`
	SKUTags            int `json:"sku_tags"`
	BrandTags          int `json:"brand_tags"`
	CategoryTags       int `json:"category_tags"`
	WordTags           int `json:"word_tags"`
}
