// Package artifacts writes the per-video output files produced by a
// successful extraction: <id>_transcript.txt holding the normalized text and
// <id>_metadata.json holding the envelope without its transcript.
//
// Writes are atomic and serialized across processes with an advisory lock
// file in the output directory, so concurrent batch runs targeting the same
// directory never interleave partial files.
package artifacts
