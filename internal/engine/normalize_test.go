package engine

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Show Me Products", "show me products"},
		{"trims and collapses whitespace", "  list   products \t ", "list products"},
		{"unwraps full quote pair", `"list products"`, "list products"},
		{"keeps interior quotes", `update stock "Test Laptop" by 5`, `update stock "test laptop" by 5`},
		{"folds curly quotes", "update stock “Test Laptop” by 5", `update stock "test laptop" by 5`},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Show Me Products",
		`"create order"`,
		"  update   stock  ",
		"update stock “Microphone Egile” by 5",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestQuotedSpans(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"none", "list products", nil},
		{"one span keeps casing", `update stock "Test Laptop" by 5`, []string{"Test Laptop"}},
		{"two spans in order", `compare "Alpha" with "Beta"`, []string{"Alpha", "Beta"}},
		{"curly quotes", "find “Gaming Headset”", []string{"Gaming Headset"}},
		{"empty span dropped", `find "" something`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuotedSpans(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("QuotedSpans(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
