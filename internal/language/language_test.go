package language

import (
	"strings"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"en", "en", true},
		{"EN", "en", true},
		{"en-us", "en-US", true},
		{"EN_us", "en-US", true},
		{"en-GB", "en-GB", true},
		{"english", "en", true},
		{"German", "de", true},
		{"pt-br", "pt-BR", true},
		{"", "", false},
		{" ", "", false},
		{"und", "", false},
		{"not a language", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Canonical(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("Canonical(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestCanonicalizeKeepsOrderAndDropsDuplicates(t *testing.T) {
	got := Canonicalize([]string{"en-us", "", "de", "EN_US", "bogus value", "en"})
	if strings.Join(got, ",") != "en-US,de,en" {
		t.Fatalf("unexpected canonical list: %v", got)
	}
	if Canonicalize(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestEqual(t *testing.T) {
	if !Equal("en_US", "en-us") {
		t.Fatal("expected en_US and en-us to match")
	}
	if Equal("en", "en-US") {
		t.Fatal("expected base and regional tags to differ")
	}
	if Equal("", "") {
		t.Fatal("expected empty codes to never match")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"de", "German"},
		{"", "Unknown"},
		{"???", "???"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
