// Package retry implements the bounded retry policy for transient I/O.
//
// Snapshot reads and event-log appends are the only operations expected to
// block on the network; when they fail with an error the caller has wrapped
// via Transient, Do retries them with exponential backoff up to a small
// bounded count before escalating. Everything else — schema errors,
// duplicate identities, invariant violations — is permanent by definition
// and fails the run immediately.
package retry
