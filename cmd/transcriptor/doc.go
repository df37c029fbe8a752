// Command transcriptor extracts video transcripts from the command line.
//
// The root command takes a single reference and prints the transcript,
// writing <id>_transcript.txt and <id>_metadata.json beside it. Subcommands
// cover batch runs (arguments, reference files, or channel feeds), the
// extraction history, dependency checks, and configuration management.
package main
