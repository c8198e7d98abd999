package corpus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/imports"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(nil)
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// --- products ---

func TestSaveProducts_LatestSKUWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []product.Record{
		{SKU: "A-1", Name: "Фильтр старый", Price: ptr(100.0)},
		{Name: "Кран без артикула"},
	}
	second := []product.Record{
		{SKU: "A-1", Name: "Фильтр новый", Price: ptr(120.0)},
	}
	if err := s.SaveProducts(ctx, "s1", "imp1", first); err != nil {
		t.Fatalf("SaveProducts: %v", err)
	}
	if err := s.SaveProducts(ctx, "s1", "imp2", second); err != nil {
		t.Fatalf("SaveProducts: %v", err)
	}

	hits, err := s.Match(ctx, "фильтр", request.Filters{}, 10)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(hits) != 1 || hits[0].Product.Name != "Фильтр новый" {
		t.Fatalf("hits = %+v, want only the newer record", hits)
	}
	if hits[0].ID != "s1/imp2/00000000" || hits[0].SupplierID != "s1" {
		t.Errorf("hit id = %q supplier = %q", hits[0].ID, hits[0].SupplierID)
	}
	if hits[0].Score != result.FallbackScore || hits[0].Tier != result.TierUnranked {
		t.Errorf("fallback hit score/tier = %v/%v", hits[0].Score, hits[0].Tier)
	}

	skus, err := s.GetExistingSKUs(ctx, "s1")
	if err != nil {
		t.Fatalf("GetExistingSKUs: %v", err)
	}
	if len(skus) != 1 {
		t.Errorf("skus = %v", skus)
	}
	if _, ok := skus["A-1"]; !ok {
		t.Errorf("A-1 missing from %v", skus)
	}
}

func TestSaveProducts_ReimportReplacesCorpus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	file := []product.Record{
		{SKU: "A-1", Name: "Фильтр сетчатый"},
		{Name: "Фильтр для воды"},
	}
	if err := s.SaveProducts(ctx, "s1", "imp1", append(file, product.Record{SKU: "B-1", Name: "Фильтр снятый"})); err != nil {
		t.Fatalf("SaveProducts: %v", err)
	}
	if err := s.SaveProducts(ctx, "s2", "imp9", []product.Record{{Name: "Фильтр чужой"}}); err != nil {
		t.Fatalf("SaveProducts: %v", err)
	}
	if err := s.SaveProducts(ctx, "s1", "imp2", file); err != nil {
		t.Fatalf("SaveProducts: %v", err)
	}

	hits, err := s.Match(ctx, "фильтр", request.Filters{SupplierIDs: []string{"s1"}}, 10)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	var ids []string
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	if want := []string{"s1/imp2/00000000", "s1/imp2/00000001"}; !slices.Equal(ids, want) {
		t.Errorf("hits after importing the same file twice = %v, want %v", ids, want)
	}

	skus, _ := s.GetExistingSKUs(ctx, "s1")
	if _, ok := skus["B-1"]; ok || len(skus) != 1 {
		t.Errorf("skus = %v, want only A-1", skus)
	}
	if other, _ := s.Match(ctx, "фильтр", request.Filters{SupplierIDs: []string{"s2"}}, 10); len(other) != 1 {
		t.Errorf("other supplier hits = %d, want 1", len(other))
	}
}

func TestSaveProducts_Cancelled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SaveProducts(ctx, "s1", "imp1", []product.Record{{Name: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveProducts(ctx, "s1", "i1", []product.Record{
		{SKU: "AQ-100", Name: "Фильтр для воды", Brand: "Аквафор", Category: "Фильтры", Price: ptr(500.0)},
		{SKU: "GR-1", Name: "Насос циркуляционный", Brand: "Grundfos", Price: ptr(9000.0)},
		{Name: "Шланг", RawText: "шланг садовый 20м", Tags: []string{"полив"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveProducts(ctx, "s2", "i2", []product.Record{
		{SKU: "X-1", Name: "Фильтр магистральный", Brand: "Гейзер", Price: ptr(1500.0)},
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		text    string
		filters request.Filters
		limit   int
		want    []string
	}{
		{"name substring", "ФИЛЬТР", request.Filters{}, 10, []string{"AQ-100", "X-1"}},
		{"every word", "фильтр воды", request.Filters{}, 10, []string{"AQ-100"}},
		{"words across fields", "фильтр аквафор", request.Filters{}, 10, []string{"AQ-100"}},
		{"sku substring", "gr-", request.Filters{}, 10, []string{"GR-1"}},
		{"brand", "grundfos", request.Filters{}, 10, []string{"GR-1"}},
		{"raw text", "садовый", request.Filters{}, 10, []string{""}},
		{"tag equality", "полив", request.Filters{}, 10, []string{""}},
		{"tag is not substring", "поли", request.Filters{}, 10, nil},
		{"supplier filter", "фильтр", request.Filters{SupplierIDs: []string{"s2"}}, 10, []string{"X-1"}},
		{"brand filter", "фильтр", request.Filters{Brands: []string{"аквафор"}}, 10, []string{"AQ-100"}},
		{"category filter", "фильтр", request.Filters{Categories: []string{"ФИЛЬТРЫ"}}, 10, []string{"AQ-100"}},
		{"price filter", "фильтр", request.Filters{MinPrice: ptr(1000.0)}, 10, []string{"X-1"}},
		{"limit", "фильтр", request.Filters{}, 1, []string{"AQ-100"}},
		{"empty query", "  ", request.Filters{}, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := s.Match(ctx, tt.text, tt.filters, tt.limit)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.Product.SKU)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Match(%q) skus = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDeleteSupplierProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SaveProducts(ctx, "s1", "i1", []product.Record{{SKU: "A", Name: "a"}, {Name: "b"}})
	_ = s.SaveProducts(ctx, "s10", "i2", []product.Record{{SKU: "A", Name: "a"}})

	n, err := s.DeleteSupplierProducts(ctx, "s1")
	if err != nil {
		t.Fatalf("DeleteSupplierProducts: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if skus, _ := s.GetExistingSKUs(ctx, "s1"); len(skus) != 0 {
		t.Errorf("sku pointers left: %v", skus)
	}
	hits, _ := s.Match(ctx, "a", request.Filters{}, 10)
	if len(hits) != 1 || hits[0].SupplierID != "s10" {
		t.Errorf("other supplier must survive, hits = %+v", hits)
	}
}

// --- tags ---

func TestMergeTags_UnionIsMonotoneAndIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.MergeTags(ctx, "s1", []string{"фильтр", "A-1"})
	if err != nil {
		t.Fatalf("MergeTags: %v", err)
	}
	if !slices.Equal(got, []string{"A-1", "фильтр"}) {
		t.Errorf("first merge = %v", got)
	}

	got, _ = s.MergeTags(ctx, "s1", []string{"насос"})
	want := []string{"A-1", "насос", "фильтр"}
	if !slices.Equal(got, want) {
		t.Errorf("second merge = %v, want %v", got, want)
	}

	again, _ := s.MergeTags(ctx, "s1", []string{"насос"})
	if !slices.Equal(again, want) {
		t.Errorf("repeated merge = %v", again)
	}

	stored, err := s.Tags(ctx, "s1")
	if err != nil || !slices.Equal(stored, want) {
		t.Errorf("Tags() = %v, %v", stored, err)
	}
}

func TestMergeTags_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.MergeTags(ctx, "s1", []string{fmt.Sprintf("tag-%02d", i)}); err != nil {
				t.Errorf("MergeTags: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Tags(ctx, "s1")
	if len(got) != 20 {
		t.Fatalf("lost updates: %d tags", len(got))
	}
}

func TestTagsAndReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Tags(ctx, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("Tags(unknown) = %v, %v", empty, err)
	}

	_, _ = s.MergeTags(ctx, "s1", []string{"x"})
	if err := s.ResetTags(ctx, "s1"); err != nil {
		t.Fatalf("ResetTags: %v", err)
	}
	if got, _ := s.Tags(ctx, "s1"); len(got) != 0 {
		t.Errorf("tags after reset = %v", got)
	}
}

// --- imports & suppliers ---

func TestImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	imp, err := imports.New("s1", "price.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	imp.TotalRows = 42
	if err := s.SaveImport(ctx, &imp); err != nil {
		t.Fatalf("SaveImport: %v", err)
	}

	got, err := s.GetImport(ctx, imp.ID)
	if err != nil {
		t.Fatalf("GetImport: %v", err)
	}
	if got.ID != imp.ID || got.TotalRows != 42 || got.Status != imports.StatusPending {
		t.Errorf("round trip = %+v", got)
	}

	if _, err := s.GetImport(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertSupplier_MergesProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.UpsertSupplier(ctx, supplier.Supplier{ID: "s1", Name: "Аква", INN: "7700000000", Rating: 4.5})
	_ = s.UpsertSupplier(ctx, supplier.Supplier{ID: "s1", Color: "#ff0000"})

	got, err := s.GetSupplier(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSupplier: %v", err)
	}
	want := supplier.Supplier{ID: "s1", Name: "Аква", INN: "7700000000", Rating: 4.5, Color: "#ff0000"}
	if got != want {
		t.Errorf("supplier = %+v, want %+v", got, want)
	}

	all, err := s.Suppliers(ctx, []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	if all["s1"].Name != "Аква" || all["s2"].ID != "s2" {
		t.Errorf("suppliers = %+v", all)
	}

	if _, err := s.GetSupplier(ctx, "s3"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPing(t *testing.T) {
	s, err := OpenInMemory(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	_ = s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected error after close")
	}
}
