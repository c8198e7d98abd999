package search

import "testing"

func TestAggregateTags(t *testing.T) {
	names := []string{
		"Фильтр для воды Аквафор",
		"Фильтр для воды Барьер",
		"Фильтр масляный",
		"Насос 220 В",
	}
	tags := AggregateTags("фильтр", names, 2, 20)

	byText := map[string]float64{}
	for _, tg := range tags {
		byText[tg.Text] = tg.Relevance
	}
	if byText["фильтр"] != 100 {
		t.Errorf("exact tag relevance = %v, want 100", byText["фильтр"])
	}
	if byText["фильтр для воды"] != 80 {
		t.Errorf("prefix tag relevance = %v, want 80", byText["фильтр для воды"])
	}
	if _, ok := byText["масляный"]; ok {
		t.Error("tags below min count must be dropped")
	}
	if _, ok := byText["220"]; ok {
		t.Error("numeric words must not become tags")
	}
	if tags[0].Text != "фильтр" || tags[0].Count != 3 {
		t.Errorf("top tag = %+v", tags[0])
	}
	for i := 1; i < len(tags); i++ {
		if tags[i].Relevance > tags[i-1].Relevance {
			t.Fatalf("tags not sorted by relevance: %+v", tags)
		}
	}
}

func TestAggregateTags_CountsOncePerName(t *testing.T) {
	tags := AggregateTags("x", []string{"кран кран", "кран"}, 2, 20)
	if len(tags) != 1 || tags[0].Text != "кран" || tags[0].Count != 2 {
		t.Fatalf("tags = %+v", tags)
	}
}

func TestAggregateTags_Truncates(t *testing.T) {
	names := []string{"aa bb cc dd", "aa bb cc dd"}
	if got := AggregateTags("aa", names, 2, 3); len(got) != 3 {
		t.Fatalf("tags = %d, want 3", len(got))
	}
}

func TestTagRelevance(t *testing.T) {
	tests := []struct {
		tag, query string
		want       float64
	}{
		{"фильтр воды", "фильтр воды", 100},
		{"фильтр воды кувшин", "фильтр воды", 80},
		{"сменный фильтр воды", "фильтр воды", 60},
		{"воды фильтр", "фильтр воды", 40},
		{"фильтр", "фильтр для воды", 6.67},
		{"насос", "фильтр", 0},
	}
	for _, tt := range tests {
		qw := words(tt.query)
		q := tt.query
		if got := tagRelevance(tt.tag, q, qw); got != tt.want {
			t.Errorf("tagRelevance(%q, %q) = %v, want %v", tt.tag, tt.query, got, tt.want)
		}
	}
}
