// Package transcript runs the extraction pipeline: resolve a reference, try
// the primary provider, fall back to the secondary provider, normalize the
// text, and memoize successes.
//
// Callers always receive a Result envelope. Expected failures (captions
// disabled, no matching language, missing tooling) are classified with a
// Kind rather than returned as Go errors, so batch runs never abort on a
// single bad item.
//
// An Extractor owns its Cache; there is no package-level state. Observers
// receive one Event per extraction for metrics and history, and every
// extraction runs inside an OpenTelemetry span.
package transcript
