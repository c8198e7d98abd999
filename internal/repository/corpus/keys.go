package corpus

import (
	"fmt"
	"strings"
)

// Key prefixes.
const (
	productPrefix  = "product/"
	skuPrefix      = "sku/"
	tagsPrefix     = "tags/"
	importPrefix   = "import/"
	supplierPrefix = "supplier/"
)

// productKey orders products of one import by position.
func productKey(supplierID, importID string, n int) []byte {
	return fmt.Appendf(nil, "%s%s/%s/%08d", productPrefix, supplierID, importID, n)
}

func supplierProductsPrefix(supplierID string) []byte {
	return []byte(productPrefix + supplierID + "/")
}

func skuKey(supplierID, sku string) []byte {
	return []byte(skuPrefix + supplierID + "/" + sku)
}

func supplierSKUPrefix(supplierID string) []byte {
	return []byte(skuPrefix + supplierID + "/")
}

func tagsKey(supplierID string) []byte {
	return []byte(tagsPrefix + supplierID)
}

func importKey(id string) []byte {
	return []byte(importPrefix + id)
}

func supplierKey(id string) []byte {
	return []byte(supplierPrefix + id)
}

// parseProductKey splits product/{supplier}/{import}/{n} into supplier id and
// the document id ({supplier}/{import}/{n}).
func parseProductKey(key []byte) (supplierID, docID string) {
	docID = strings.TrimPrefix(string(key), productPrefix)
	supplierID, _, _ = strings.Cut(docID, "/")
	return supplierID, docID
}
