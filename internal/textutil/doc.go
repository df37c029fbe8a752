// Package textutil cleans raw transcript text into its canonical form.
//
// Normalize collapses whitespace, strips bracketed and parenthesized
// annotations such as [Music] or (inaudible), and folds typographic quotes
// to their ASCII forms. It is idempotent, so cached and freshly extracted
// transcripts compare equal.
package textutil
