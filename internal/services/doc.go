// Package services defines shared utilities consumed by the extraction
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp batch run IDs, item positions, and provider
//     names for logging and tracing.
//   - Structured error markers plus the Wrap helper so backend failures can be
//     classified with errors.Is at the provider boundary.
//
// Use these helpers when wiring new backends so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
