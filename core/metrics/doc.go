// Package metrics records one MetricsRow per strategy execution.
//
// The Recorder provides scoped acquisition: a Scope is begun exactly at the
// timer boundary the strategy declares (reads for Full Compare, the
// read/stage step for Full Refresh, the update-slice read for Incremental)
// and is finalized and flushed on every exit path — success, anomaly-only
// completion, or failure. Failed and cancelled runs still flush a row so
// that every run attempt is accounted for.
//
// Materialization of the synthetic "current" dataset produces its own row
// flagged excluded_from_benchmark, which consumers must never aggregate
// with strategy timings.
//
// Rows are write-once. The package also exports Prometheus collectors for
// live observation; the durable rows in the sink remain the source of truth
// for cross-run comparison.
package metrics
