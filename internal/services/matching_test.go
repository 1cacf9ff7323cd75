package services

import "testing"

func TestNormalizeArabic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"removes diacritics", "مُحَمَّد", "محمد"},
		{"folds alef variants", "أحمد إبراهيم آل", "احمد ابراهيم ال"},
		{"folds taa marbuta", "فاطمة", "فاطمه"},
		{"folds alef maqsura", "مصطفى", "مصطفي"},
		{"removes tatweel", "محـــمد", "محمد"},
		{"collapses whitespace", "  احمد   خليل ", "احمد خليل"},
		{"latin passthrough", "Ahmad Khalil", "Ahmad Khalil"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeArabic(tt.in); got != tt.want {
				t.Errorf("NormalizeArabic(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "احمد خليل", "احمد خليل", 1},
		{"order insensitive", "احمد خليل", "خليل احمد", 1},
		{"diacritics ignored", "مُحَمَّد خليل", "محمد خليل", 1},
		{"hamza variants match", "أحمد خليل", "احمد خليل", 1},
		{"disjoint", "احمد خليل", "سمير حداد", 0},
		{"empty", "", "احمد", 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NameSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("NameSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNamesLikelyMatchPartialOverlap(t *testing.T) {
	t.Parallel()
	// Two of three tokens shared: 2/4 unique tokens = 0.5, at threshold.
	if !NamesLikelyMatch("احمد محمد خليل", "احمد محمود خليل") {
		t.Error("expected partial name overlap to match")
	}
	if NamesLikelyMatch("احمد خليل", "سمير حداد") {
		t.Error("disjoint names must not match")
	}
}
