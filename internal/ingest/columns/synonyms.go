package columns

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/pricedex/internal/domain/field"
)

// SynonymTable lists known header spellings per canonical field.
// Entries are stored normalized (see NormalizeName).
type SynonymTable struct {
	entries map[field.Type][]string
}

var defaultSynonyms = map[field.Type][]string{
	field.SKU: {
		"sku", "артикул", "код", "article", "арт", "код товара", "артикул товара",
		"vendor code", "item code", "part number", "партномер", "каталожный номер",
		"код для заказа", "item", "vendor", "артикул производителя", "код производителя",
		"внутренний код", "ref", "reference", "product code",
	},
	field.Name: {
		"name", "наименование", "название", "товар", "продукт", "описание", "product",
		"item", "description", "номенклатура", "материал", "наименование товара",
		"товар/услуга", "позиция", "product name", "item name", "title", "заголовок",
	},
	field.Price: {
		"price", "цена", "стоимость", "прайс", "cost", "розница", "опт", "розничная цена",
		"оптовая цена", "price rub", "цена руб", "ррц", "рекомендуемая цена", "базовая цена",
		"цена с ндс", "цена без ндс", "unit price", "сумма",
	},
	field.Brand: {
		"brand", "бренд", "производитель", "марка", "manufacturer", "vendor", "поставщик",
		"завод", "торговая марка", "tm", "изготовитель", "фирма", "компания производитель",
	},
	field.Category: {
		"category", "категория", "группа", "раздел", "тип", "вид", "class", "group",
		"рубрика", "рубрика в каталоге", "товарная группа", "группа товаров", "классификация",
	},
	field.Subcategory: {
		"subcategory", "подкатегория", "подгруппа", "подраздел", "subgroup", "sub category",
		"рубрика в каталоге_1", "детальная категория", "подвид",
	},
	field.Unit: {
		"unit", "ед", "единица", "единица измерения", "ед.изм", "measure", "uom",
		"ед. изм.", "единицы", "шт", "штук",
	},
	field.Stock: {
		"stock", "остаток", "наличие", "количество", "qty", "available", "в наличии",
		"склад", "остатки", "кол-во", "quantity", "доступно", "свободно", "резерв",
	},
	field.URL: {
		"url", "ссылка", "link", "href", "адрес", "web", "website", "страница", "page", "uri",
	},
}

// DefaultSynonyms returns a fresh copy of the built-in Russian/English table.
func DefaultSynonyms() *SynonymTable {
	t := &SynonymTable{entries: make(map[field.Type][]string, len(defaultSynonyms))}
	for ft, list := range defaultSynonyms {
		t.add(ft, list)
	}
	return t
}

// Merge adds synonyms keyed by field name. Unknown field names are returned
// as an error after all valid entries are merged.
func (t *SynonymTable) Merge(overrides map[string][]string) error {
	var unknown []string
	for name, list := range overrides {
		ft, err := field.Parse(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		t.add(ft, list)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownFieldsError{Fields: unknown}
	}
	return nil
}

// For returns the synonyms of a field.
func (t *SynonymTable) For(ft field.Type) []string {
	return t.entries[ft]
}

// Contains reports whether the normalized name is a known synonym of ft.
func (t *SynonymTable) Contains(ft field.Type, normalized string) bool {
	for _, s := range t.entries[ft] {
		if s == normalized {
			return true
		}
	}
	return false
}

func (t *SynonymTable) add(ft field.Type, list []string) {
	if t.entries == nil {
		t.entries = make(map[field.Type][]string)
	}
	for _, s := range list {
		n := NormalizeName(s)
		if n == "" || t.Contains(ft, n) {
			continue
		}
		t.entries[ft] = append(t.entries[ft], n)
	}
}

// UnknownFieldsError reports synonym overrides for non-canonical fields.
type UnknownFieldsError struct {
	Fields []string
}

func (e *UnknownFieldsError) Error() string {
	return "unknown field types in synonym overrides: " + strings.Join(e.Fields, ", ")
}
