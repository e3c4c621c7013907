// Package dest provides the destinations a benchmark run writes to.
//
// Two backings are supported:
//   - A delta-style object store layout (DeltaDestination): one
//     current.parquet object plus an append-only _log/ of JSON-lines
//     commit objects, one per event batch.
//   - A relational warehouse via GORM (WarehouseDestination): a current
//     table plus an append-only sync_events table, with a schema check
//     before every event append.
//
// Both implement the Destination interface, whose three write shapes map
// one-to-one onto the sync strategies: Overwrite for Full Refresh,
// AppendEvents for Full Compare, AppendRecords for Incremental.
package dest
