package query

import "testing"

func TestNew_Valid(t *testing.T) {
	q, err := New("фильтр", []Clause{
		{Strategy: Term, Field: "sku", Text: "ФИЛЬТР", Boost: 10},
		{Strategy: Fuzzy, Field: "name", Text: "фильтр", Boost: 3},
	}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "фильтр" || len(q.Clauses()) != 2 || q.MinScore() != 0.5 {
		t.Errorf("unexpected query: %+v", q)
	}
}

func TestNew_Invalid(t *testing.T) {
	ok := Clause{Strategy: Term, Field: "sku", Text: "x", Boost: 1}
	tests := []struct {
		name    string
		text    string
		clauses []Clause
		min     float64
	}{
		{"empty text", "", []Clause{ok}, 0},
		{"no clauses", "x", nil, 0},
		{"bad strategy", "x", []Clause{{Strategy: "regex", Field: "sku", Boost: 1}}, 0},
		{"no field", "x", []Clause{{Strategy: Term, Boost: 1}}, 0},
		{"zero boost", "x", []Clause{{Strategy: Term, Field: "sku"}}, 0},
		{"negative min score", "x", []Clause{ok}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.text, tt.clauses, tt.min); err == nil {
				t.Error("expected error")
			}
		})
	}
}
