package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// wordForms maps English language names to their ISO 639-1 code.
var wordForms = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

// Canonical parses code as a BCP 47 tag and returns its canonical spelling.
// The boolean is false for empty, undetermined, or unparseable input.
func Canonical(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	if mapped, ok := wordForms[strings.ToLower(code)]; ok {
		code = mapped
	}
	tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil || tag == xlanguage.Und {
		return "", false
	}
	return tag.String(), true
}

// Canonicalize converts a preference list to canonical tags, dropping
// unparseable entries and duplicates while keeping the caller's order.
func Canonicalize(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		canonical, ok := Canonical(code)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// Equal reports whether two codes name the same canonical tag.
func Equal(a, b string) bool {
	ca, okA := Canonical(a)
	cb, okB := Canonical(b)
	return okA && okB && ca == cb
}

// DisplayName returns the English name for a language code.
// Returns "Unknown" for empty input, or the uppercased code when it cannot be parsed.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	canonical, ok := Canonical(trimmed)
	if !ok {
		return strings.ToUpper(trimmed)
	}
	tag := xlanguage.MustParse(canonical)
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}
