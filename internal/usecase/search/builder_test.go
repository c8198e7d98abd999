package search

import (
	"testing"

	"github.com/kailas-cloud/pricedex/internal/domain/search/query"
	"github.com/kailas-cloud/pricedex/internal/domain/search/request"
)

func TestBuildQuery_ClauseOrder(t *testing.T) {
	q, err := BuildQuery("  Aq-100 ", 0.5)
	if err != nil {
		t.Fatalf("BuildQuery: %v", err)
	}
	if q.Text() != "Aq-100" || q.MinScore() != 0.5 {
		t.Fatalf("query = %q min=%v", q.Text(), q.MinScore())
	}

	want := []struct {
		strategy query.Strategy
		field    string
		boost    float64
	}{
		{query.Term, "sku", 10},
		{query.Prefix, "sku_prefixes", 5},
		{query.Term, "brand", 8},
		{query.Fuzzy, "brand_text", 6.4},
		{query.Fuzzy, "name", 3},
		{query.Phrase, "name", 6},
		{query.Fuzzy, "name_translit", 2.7},
		{query.Fuzzy, "tags_text", 4},
		{query.Fuzzy, "category_text", 2},
		{query.Wildcard, "name", 1},
		{query.Fuzzy, "raw_text", 1.5},
	}
	clauses := q.Clauses()
	if len(clauses) != len(want) {
		t.Fatalf("clauses = %d, want %d", len(clauses), len(want))
	}
	for i, w := range want {
		c := clauses[i]
		if c.Strategy != w.strategy || c.Field != w.field || c.Boost != w.boost {
			t.Errorf("clause %d = %+v, want %s %s %v", i+1, c, w.strategy, w.field, w.boost)
		}
	}
	if clauses[0].Text != "AQ-100" {
		t.Errorf("sku term must be upper-cased, got %q", clauses[0].Text)
	}
	if clauses[2].Text != "aq-100" {
		t.Errorf("brand term must be lower-cased, got %q", clauses[2].Text)
	}
}

func TestBuildQuery_TransliteratesLayout(t *testing.T) {
	q, err := BuildQuery("abkmnh", 0)
	if err != nil {
		t.Fatalf("BuildQuery: %v", err)
	}
	if got := q.Clauses()[6].Text; got != "фильтр" {
		t.Errorf("translit clause text = %q, want фильтр", got)
	}
}

func TestBuildQuery_Empty(t *testing.T) {
	if _, err := BuildQuery("   ", 0.5); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestBuildFilters(t *testing.T) {
	lo, hi := 100.0, 500.0
	expr, err := BuildFilters(request.Filters{
		SupplierIDs: []string{"s1", "s2"},
		Brands:      []string{" Аквафор "},
		Categories:  []string{"Фильтры"},
		MinPrice:    &lo,
		MaxPrice:    &hi,
	})
	if err != nil {
		t.Fatalf("BuildFilters: %v", err)
	}

	conds := expr.Conditions()
	if len(conds) != 4 {
		t.Fatalf("conds = %d, want 4", len(conds))
	}
	if conds[0].Key() != "supplier_id" || len(conds[0].Values()) != 2 {
		t.Errorf("supplier condition = %+v", conds[0])
	}
	if conds[1].Key() != "brand" || conds[1].Values()[0] != "аквафор" {
		t.Errorf("brand condition = %+v", conds[1].Values())
	}
	if conds[2].Key() != "category" || conds[2].Values()[0] != "фильтры" {
		t.Errorf("category condition = %+v", conds[2].Values())
	}
	r := conds[3].Range()
	if conds[3].Key() != "price" || r == nil || *r.Min() != 100 || *r.Max() != 500 {
		t.Errorf("price condition = %+v", conds[3])
	}
	if !r.Contains(100) || r.Contains(501) {
		t.Error("price range must be inclusive")
	}
}

func TestBuildFilters_Empty(t *testing.T) {
	expr, err := BuildFilters(request.Filters{})
	if err != nil {
		t.Fatalf("BuildFilters: %v", err)
	}
	if !expr.IsEmpty() {
		t.Error("expected empty expression")
	}
}

func TestBuildFilters_BlankValues(t *testing.T) {
	if _, err := BuildFilters(request.Filters{Brands: []string{" "}}); err == nil {
		t.Fatal("expected error for blank brand")
	}
}
