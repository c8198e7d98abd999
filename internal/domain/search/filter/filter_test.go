package filter

import (
	"fmt"
	"strings"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestNewMatch(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		values  []string
		want    []string
		wantErr string
	}{
		{"single", "brand", []string{"аквафор"}, []string{"аквафор"}, ""},
		{"drops blanks and repeats", "brand", []string{"", "гейзер", "гейзер", "барьер"}, []string{"гейзер", "барьер"}, ""},
		{"no key", "", []string{"x"}, nil, "filter key is required"},
		{"only blanks", "brand", []string{"", ""}, nil, `match value is required for key "brand"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewMatch(tt.key, tt.values...)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("NewMatch() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fmt.Sprint(c.Values()) != fmt.Sprint(tt.want) {
				t.Errorf("values = %v, want %v", c.Values(), tt.want)
			}
			if !c.IsMatch() || c.IsRange() {
				t.Error("expected a match condition")
			}
		})
	}
}

func TestNewMatch_TooManyValues(t *testing.T) {
	values := make([]string, MaxValuesPerMatch+1)
	for i := range values {
		values[i] = fmt.Sprintf("s%d", i)
	}
	if _, err := NewMatch("supplier_id", values...); err == nil {
		t.Fatal("expected error for too many values")
	}
}

func TestCondition_Accepts(t *testing.T) {
	c, _ := NewMatch("supplier_id", "s1", "s2")
	if !c.Accepts("s2") || c.Accepts("s3") {
		t.Error("Accepts must check membership")
	}
}

func TestNewBounds(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  *float64
		wantErr bool
	}{
		{"both", ptr(10), ptr(100), false},
		{"equal", ptr(10), ptr(10), false},
		{"lower only", ptr(10), nil, false},
		{"upper only", nil, ptr(100), false},
		{"none", nil, nil, true},
		{"inverted", ptr(100), ptr(10), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBounds(tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBounds() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	r, _ := NewBounds(ptr(100), ptr(500))
	for v, want := range map[float64]bool{99.99: false, 100: true, 250: true, 500: true, 500.01: false} {
		if got := r.Contains(v); got != want {
			t.Errorf("Contains(%v) = %v, want %v", v, got, want)
		}
	}

	open, _ := NewBounds(nil, ptr(10))
	if !open.Contains(-1e9) || open.Contains(11) {
		t.Error("open lower bound mishandled")
	}
}

func TestNewExpression(t *testing.T) {
	brand, _ := NewMatch("brand", "гейзер")
	r, _ := NewBounds(ptr(1), nil)
	price, _ := NewRange("price", r)

	expr, err := NewExpression(brand, price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.IsEmpty() || len(expr.Conditions()) != 2 {
		t.Fatalf("conditions = %v", expr.Conditions())
	}
	if c, ok := expr.Get("price"); !ok || !c.IsRange() || *c.Range().Min() != 1 {
		t.Errorf("Get(price) = %+v, %v", c, ok)
	}
	if _, ok := expr.Get("category"); ok {
		t.Error("Get(category) must miss")
	}
}

func TestNewExpression_Errors(t *testing.T) {
	a, _ := NewMatch("brand", "a")
	b, _ := NewMatch("brand", "b")
	if _, err := NewExpression(a, b); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate key error, got %v", err)
	}
	if _, err := NewExpression(Condition{}); err == nil {
		t.Error("expected error for zero condition")
	}

	many := make([]Condition, MaxConditions+1)
	for i := range many {
		many[i], _ = NewMatch(fmt.Sprintf("k%d", i), "v")
	}
	if _, err := NewExpression(many...); err == nil {
		t.Error("expected error for too many conditions")
	}
}

func TestExpression_ZeroIsEmpty(t *testing.T) {
	if !(Expression{}).IsEmpty() {
		t.Error("zero Expression must be empty")
	}
	expr, err := NewExpression()
	if err != nil || !expr.IsEmpty() {
		t.Errorf("NewExpression() = %v, %v", expr, err)
	}
}

func TestNewExclude(t *testing.T) {
	c, err := NewExclude("import_id", "imp-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsMatch() || !c.IsExclude() {
		t.Fatal("expected an exclude tag condition")
	}
	if c.Accepts("imp-2") || !c.Accepts("imp-1") || !c.Accepts("") {
		t.Error("Accepts must reject only the listed values")
	}
	if _, err := NewExclude("import_id"); err == nil {
		t.Error("expected error without values")
	}
}
