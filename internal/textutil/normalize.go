package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	bracketPattern = regexp.MustCompile(`\[.*?\]`)
	parenPattern   = regexp.MustCompile(`\(.*?\)`)
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
	"″", `"`,
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"′", "'",
)

// Normalize returns the canonical form of a raw transcript.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = collapseSpace(text)
	text = bracketPattern.ReplaceAllString(text, "")
	text = parenPattern.ReplaceAllString(text, "")
	text = quoteReplacer.Replace(text)
	// Stripping annotations leaves double spaces behind.
	return collapseSpace(text)
}

// collapseSpace joins the Unicode-whitespace separated fields of text with
// single ASCII spaces, so no-break and thin spaces collapse too and the
// result splits into exactly WordCount fields.
func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// WordCount returns the number of whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CharCount returns the number of characters (runes) in text.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}
