// Package language canonicalizes caption language preferences.
//
// Codes are parsed as BCP 47 tags through golang.org/x/text so "EN_us",
// "en-us", and "en-US" all collapse to the same preference. English word
// forms ("english", "German") are accepted as a convenience.
package language
