package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/pricedex/internal/domain"
	"github.com/kailas-cloud/pricedex/internal/domain/product"
	"github.com/kailas-cloud/pricedex/internal/domain/search/filter"
	"github.com/kailas-cloud/pricedex/internal/domain/search/mode"
	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
	"github.com/kailas-cloud/pricedex/internal/domain/search/result"
	"github.com/kailas-cloud/pricedex/internal/domain/supplier"
)

// --- Mocks ---

type mockIndex struct {
	hits      []result.Hit
	err       error
	called    bool
	lastQuery query.Query
	lastSize  int
	lastExpr  filter.Expression
}

func (m *mockIndex) Search(_ context.Context, q query.Query, f filter.Expression, size int) ([]result.Hit, error) {
	m.called = true
	m.lastQuery = q
	m.lastExpr = f
	m.lastSize = size
	return m.hits, m.err
}

type mockCorpus struct {
	hits        []result.Hit
	err         error
	profiles    map[string]supplier.Supplier
	profilesErr error
	matchCalled bool
}

func (m *mockCorpus) Match(_ context.Context, _ string, _ request.Filters, _ int) ([]result.Hit, error) {
	m.matchCalled = true
	return m.hits, m.err
}

func (m *mockCorpus) Suppliers(_ context.Context, _ []string) (map[string]supplier.Supplier, error) {
	return m.profiles, m.profilesErr
}

func mustRequest(t *testing.T, q string, f request.Filters, limit int) *request.Request {
	t.Helper()
	req, err := request.New(q, f, limit)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func hit(id, supplierID, name string, score float64) result.Hit {
	return result.Hit{ID: id, SupplierID: supplierID, Product: product.Record{Name: name}, Score: score}
}

// --- Tests ---

func TestSearch_IndexMode(t *testing.T) {
	idx := &mockIndex{hits: []result.Hit{
		hit("2", "s2", "фильтр масляный", 9),
		hit("1", "s1", "фильтр для воды Аквафор", 3),
	}}
	corp := &mockCorpus{profiles: map[string]supplier.Supplier{
		"s1": {ID: "s1", Name: "Аква", Rating: 5},
		"s2": {ID: "s2", Name: "Мотор", Rating: 3},
	}}
	svc := New(idx, corp, DefaultConfig(), nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "фильтр воды", request.Filters{}, 10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Mode != mode.Index {
		t.Errorf("mode = %s, want %s", resp.Mode, mode.Index)
	}
	if corp.matchCalled {
		t.Error("fallback must not run when the index answers")
	}
	if idx.lastSize != DefaultIndexSize || idx.lastQuery.MinScore() != DefaultMinScore {
		t.Errorf("index called with size=%d min=%v", idx.lastSize, idx.lastQuery.MinScore())
	}

	if len(resp.Products) != 2 || resp.Products[0].ID != "1" {
		t.Fatalf("products = %+v", resp.Products)
	}
	if resp.Products[0].Tier != result.TierAllWords || resp.Products[1].Tier != result.TierAnyWord {
		t.Errorf("tiers = %d, %d", resp.Products[0].Tier, resp.Products[1].Tier)
	}
	if resp.Products[0].SupplierName != "Аква" {
		t.Errorf("supplier name not attached: %+v", resp.Products[0])
	}
	if resp.TotalSuppliers != 2 || resp.Suppliers[0].Supplier.ID != "s1" {
		t.Errorf("suppliers = %+v", resp.Suppliers)
	}
	if resp.Suppliers[0].MatchType != "exact" {
		t.Errorf("match_type = %q", resp.Suppliers[0].MatchType)
	}
	if resp.Query != "фильтр воды" || resp.SearchTimeMS < 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearch_FallbackWhenIndexUnreachable(t *testing.T) {
	idx := &mockIndex{err: fmt.Errorf("%w: dial tcp: refused", domain.ErrSearchBackendUnavailable)}
	corp := &mockCorpus{
		hits: []result.Hit{
			{ID: "a", SupplierID: "s1", Product: product.Record{Name: "Фильтр для воды"}, Score: result.FallbackScore},
			{ID: "b", SupplierID: "s2", Product: product.Record{Name: "Фильтр воды"}, Score: result.FallbackScore},
		},
		profiles: map[string]supplier.Supplier{"s2": {ID: "s2", Rating: 4}},
	}
	svc := New(idx, corp, DefaultConfig(), nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "фильтр воды", request.Filters{}, 10))
	if err != nil {
		t.Fatalf("backend errors must not surface, got %v", err)
	}
	if resp.Mode != mode.Fallback {
		t.Errorf("mode = %s, want %s", resp.Mode, mode.Fallback)
	}
	if resp.TotalSuppliers != 2 || resp.Suppliers[0].Supplier.ID != "s2" {
		t.Errorf("suppliers = %+v", resp.Suppliers)
	}
	for _, s := range resp.Suppliers {
		if s.MatchType != "fallback" || s.MaxScore != result.FallbackScore {
			t.Errorf("fallback supplier = %+v", s)
		}
	}
}

func TestSearch_FallbackOnEmptyIndex(t *testing.T) {
	corp := &mockCorpus{hits: []result.Hit{hit("a", "s1", "Кран", result.FallbackScore)}}
	svc := New(&mockIndex{}, corp, DefaultConfig(), nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "кран", request.Filters{}, 10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !corp.matchCalled || resp.Mode != mode.Fallback || resp.TotalProducts != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearch_BothBackendsFail(t *testing.T) {
	idx := &mockIndex{err: errors.New("boom")}
	corp := &mockCorpus{err: errors.New("closed")}
	svc := New(idx, corp, DefaultConfig(), nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "кран", request.Filters{}, 10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Mode != mode.Fallback || len(resp.Products) != 0 || len(resp.Suppliers) != 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearch_LimitsProducts(t *testing.T) {
	var hits []result.Hit
	for i := range 5 {
		hits = append(hits, hit(fmt.Sprint(i), "s1", "кран", float64(i+1)))
	}
	svc := New(&mockIndex{hits: hits}, &mockCorpus{}, DefaultConfig(), nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "кран", request.Filters{}, 2))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Products) != 2 || resp.TotalProducts != 5 {
		t.Fatalf("products = %d total = %d", len(resp.Products), resp.TotalProducts)
	}
	if resp.Products[0].Score != 5 {
		t.Errorf("best score first, got %v", resp.Products[0].Score)
	}
	if resp.Suppliers[0].MatchedCount != 5 {
		t.Errorf("grouping must see every hit, got %d", resp.Suppliers[0].MatchedCount)
	}
}

func TestSearch_PassesFilters(t *testing.T) {
	idx := &mockIndex{hits: []result.Hit{hit("1", "s1", "кран", 2)}}
	svc := New(idx, &mockCorpus{}, DefaultConfig(), nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "кран", request.Filters{Brands: []string{"Grohe"}}, 10))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	conds := idx.lastExpr.Conditions()
	if len(conds) != 1 || conds[0].Key() != "brand" || conds[0].Values()[0] != "grohe" {
		t.Errorf("filters = %+v", conds)
	}
}

func TestSearch_InvalidFilters(t *testing.T) {
	idx := &mockIndex{}
	svc := New(idx, &mockCorpus{}, DefaultConfig(), nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "кран", request.Filters{Brands: []string{""}}, 10))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if idx.called {
		t.Error("index must not be called for invalid filters")
	}
}
