// Package captions implements the primary transcript provider on top of the
// caption tracks a video page publishes.
//
// Provider maps backend failures onto transcript kinds and never returns Go
// errors to the pipeline. HTTPBackend is the default backend: it scrapes the
// watch page for the embedded player response with goquery, picks the best
// caption track for the caller's language preferences, and decodes the
// timedtext XML into segments. Transient HTTP failures are retried with
// exponential backoff.
package captions
