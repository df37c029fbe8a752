// Package history persists one row per completed extraction in a SQLite
// database under the state directory.
//
// The Store owns the database handle and schema; Recorder adapts it to the
// transcript.Observer interface so the extractor can log attempts without
// knowing about storage. Schema changes bump schemaVersion and require the
// operator to delete the database, mirroring how the CLI treats other state.
package history
