package index

import "github.com/kailas-cloud/pricedex/internal/db"

// Hash field names of an indexed product.
const (
	fieldSupplierID      = "supplier_id"
	fieldSKU             = "sku"
	fieldSKUPrefixes     = "sku_prefixes"
	fieldName            = "name"
	fieldNameTranslit    = "name_translit"
	fieldBrand           = "brand"
	fieldBrandText       = "brand_text"
	fieldCategory        = "category"
	fieldCategoryText    = "category_text"
	fieldSubcategory     = "subcategory"
	fieldSubcategoryText = "subcategory_text"
	fieldTags            = "tags"
	fieldTagsText        = "tags_text"
	fieldImportID        = "import_id"
	fieldRawText         = "raw_text"
	fieldPrice           = "price"
	fieldStock           = "stock"
	fieldUnit            = "unit"
	fieldURL             = "url"
	fieldSourceSheet     = "source_sheet"
	fieldRowNumber       = "row_number"
)

const tagSeparator = ","

// buildSchema declares the product index. subcategory_text, unit, url and the
// source fields are stored on the hash without being indexed.
func buildSchema(cfg Config) (*db.Schema, error) {
	return db.NewSchema(cfg.IndexName, cfg.KeyPrefix, cfg.Language,
		db.Text(fieldName, 2),
		db.Text(fieldNameTranslit, 0),
		db.Text(fieldBrandText, 0),
		db.Text(fieldCategoryText, 0),
		db.Text(fieldTagsText, 0),
		db.Text(fieldRawText, 0),
		db.Tag(fieldSKU, ""),
		db.Tag(fieldSKUPrefixes, tagSeparator),
		db.Tag(fieldBrand, ""),
		db.Tag(fieldCategory, ""),
		db.Tag(fieldSubcategory, ""),
		db.Tag(fieldTags, tagSeparator),
		db.Tag(fieldSupplierID, ""),
		db.Tag(fieldImportID, ""),
		db.Numeric(fieldPrice, true),
		db.Numeric(fieldStock, false),
	)
}
