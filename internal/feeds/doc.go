// Package feeds turns a channel or playlist feed into batch references.
//
// Sources may be a full RSS/Atom URL, a bare channel id (UC...), or a
// playlist id (PL...). Items are resolved to video ids through the same
// resolver the extractor uses; links that do not resolve are skipped.
package feeds
