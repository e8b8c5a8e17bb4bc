package resolver

import (
	"math"
	"testing"
)

func TestFoldName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Microphone Egile", "microphone egile"},
		{"Microphone_Egile", "microphone egile"},
		{"  USB--Hub  (v2)", "usb hub v2"},
		{"ALL CAPS", "all caps"},
		{"?!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := foldName(tt.input); got != tt.want {
			t.Errorf("foldName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		mention string
		product string
		want    float64
	}{
		{"identical", "microphone egile", "microphone egile", 1},
		{"empty mention", "", "microphone egile", 0},
		{"empty name", "microphone egile", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity(tt.mention, tt.product); got != tt.want {
				t.Errorf("similarity(%q, %q) = %v, want %v", tt.mention, tt.product, got, tt.want)
			}
		})
	}

	// One shared token out of three, edit distance 1 over 16 runes.
	got := similarity("microphone egil", "microphone egile")
	want := 0.6*(1.0/3.0) + 0.4*(1.0-1.0/16.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("similarity = %v, want %v", got, want)
	}

	// A related name must score above an unrelated one.
	related := similarity("microphone egil", "microphone egile")
	unrelated := similarity("microphone egil", "gaming headset")
	if related <= unrelated {
		t.Errorf("related %v <= unrelated %v", related, unrelated)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"egile", "egil", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBestCandidate(t *testing.T) {
	candidates := []Candidate{
		{CatalogID: "prod_1", DisplayName: "Microphone Egile Pro", Score: 0.8},
		{CatalogID: "prod_2", DisplayName: "Microphone Egile", Score: 0.8},
		{CatalogID: "prod_3", DisplayName: "Test Laptop", Score: 0.9},
		{CatalogID: "prod_4", DisplayName: "Gaming Headset", Score: 0.3},
	}

	best, ok := bestCandidate(candidates, 0.55)
	if !ok || best.CatalogID != "prod_3" {
		t.Errorf("best = (%+v, %v), want prod_3", best, ok)
	}

	// Ties break to the shortest display name.
	best, ok = bestCandidate(candidates[:2], 0.55)
	if !ok || best.CatalogID != "prod_2" {
		t.Errorf("tie best = (%+v, %v), want prod_2", best, ok)
	}

	// Nothing above the threshold means no candidate at all.
	if _, ok := bestCandidate(candidates, 0.95); ok {
		t.Error("expected no candidate above 0.95")
	}
}

func TestRewriteVariants(t *testing.T) {
	variants := rewriteVariants("egile mic")

	want := map[string]bool{
		"mic egile":        false,
		"egile mics":       false,
		"egile microphone": false,
		"microphone egile": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for v, seen := range want {
		if !seen {
			t.Errorf("variant %q missing from %v", v, variants)
		}
	}

	for _, v := range variants {
		if v == "egile mic" {
			t.Error("variants must not repeat the original mention")
		}
	}
}

func TestSignificantTokens(t *testing.T) {
	got := significantTokens("the microphone for me")
	if len(got) != 1 || got[0] != "microphone" {
		t.Errorf("significantTokens = %v, want [microphone]", got)
	}
}
