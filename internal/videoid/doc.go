// Package videoid resolves free-form video references (watch URLs, short
// links, embed URLs, bare identifiers) into validated 11-character IDs.
package videoid
