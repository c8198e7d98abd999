package tags

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/pricedex/internal/domain/product"
)

func TestGenerate(t *testing.T) {
	p := &product.Record{
		SKU:         "AQ-100",
		Name:        "Фильтр для воды, Аквафор 2024!",
		Brand:       "Аквафор",
		Category:    "Фильтры",
		Subcategory: " Кувшины ",
	}
	got := Generate(p)
	want := []string{"AQ-100", "аквафор", "воды", "кувшины", "фильтр", "фильтры"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want %v", got, want)
	}
}

func TestGenerate_KeepsSKUCase(t *testing.T) {
	got := Generate(&product.Record{SKU: "Ab-1", Name: "x"})
	if !reflect.DeepEqual(got, []string{"Ab-1"}) {
		t.Errorf("Generate() = %v", got)
	}
}

func TestDedup_AcrossSheets(t *testing.T) {
	products := []product.Record{
		{SKU: "A-1", Name: "Фильтр для воды", SourceSheet: "Лист1"},
		{SKU: "A-2", Name: "Картридж", SourceSheet: "Лист1"},
		{Name: "Кран без артикула", SourceSheet: "Лист1"},
		{Name: "Кран без артикула", SourceSheet: "Лист3"},
		{SKU: "A-1", Name: "Фильтр (дубль)", SourceSheet: "Лист3"},
	}

	unique, stats := Dedup(products)

	if stats.DuplicateSKUs != 1 {
		t.Errorf("duplicate_skus = %d, want 1", stats.DuplicateSKUs)
	}
	if stats.TotalProducts != 5 || stats.UniqueProducts != 4 || stats.ProductsWithoutSKU != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(unique) != 4 {
		t.Fatalf("unique = %d, want 4", len(unique))
	}
	count := 0
	for _, p := range unique {
		if p.SKU == "A-1" {
			count++
			if p.SourceSheet != "Лист1" {
				t.Errorf("first occurrence must win, got sheet %s", p.SourceSheet)
			}
		}
	}
	if count != 1 {
		t.Errorf("A-1 kept %d times", count)
	}
	if stats.SKUTags != 2 || stats.WordTags == 0 {
		t.Errorf("tag origins = %+v", stats)
	}
	if stats.TotalTags != stats.SKUTags+stats.BrandTags+stats.CategoryTags+stats.WordTags {
		t.Errorf("tag origins do not add up: %+v", stats)
	}
}

func TestCollector_FirstOriginWins(t *testing.T) {
	c := NewCollector()
	c.Add(&product.Record{Name: "x", Brand: "Гейзер"})
	c.Add(&product.Record{Name: "Гейзер"})
	if c.Len() != 1 || c.Count(OriginBrand) != 1 || c.Count(OriginWord) != 0 {
		t.Errorf("len=%d brand=%d word=%d", c.Len(), c.Count(OriginBrand), c.Count(OriginWord))
	}
}

func TestUnion(t *testing.T) {
	a := []string{"b", "a"}
	b := []string{"c", "a", ""}

	got := Union(a, b)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Union() = %v", got)
	}
	if again := Union(got, b); !reflect.DeepEqual(again, got) {
		t.Errorf("Union is not idempotent: %v", again)
	}
	for _, tag := range a {
		found := false
		for _, g := range got {
			found = found || g == tag
		}
		if !found {
			t.Errorf("Union dropped %q", tag)
		}
	}
}
