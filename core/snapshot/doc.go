// Package snapshot defines the uniform in-memory representation of a
// dataset's point-in-time state.
//
// A Snapshot maps each identity to exactly one Record. The Builder enforces
// this at load time: a backing source containing two records for the same
// identity fails with DuplicateIdentityError before the reconciler ever
// sees the data, and records missing required fields (or carrying
// timezone-naive timestamps) fail with SchemaError.
//
// Snapshots are immutable once built and are created fresh for every
// strategy run — there is no caching across runs, to avoid cross-run
// contamination of benchmark results.
package snapshot
