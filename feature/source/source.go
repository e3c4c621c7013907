package source

import (
	"context"

	"syncbench/core/snapshot"
)

// Source exposes the two read shapes a sync strategy can ask of the
// system of record: the full current state, and the update slice
// (changed + new rows) for incremental consumption.
type Source interface {
	// Type names the backing technology for metrics dimensions.
	Type() string
	// Current reads a full point-in-time snapshot of the source.
	Current(ctx context.Context) (*snapshot.Snapshot, error)
	// Updates reads only the rows changed or created since the
	// destination was last materialized.
	Updates(ctx context.Context) (*snapshot.Snapshot, error)
}

// Materializer seeds a source with synthetic data before a run. It is
// setup machinery: its writes are timed separately and excluded from
// benchmark results.
type Materializer interface {
	WriteCurrent(ctx context.Context, recs []snapshot.Record) error
	WriteUpdates(ctx context.Context, recs []snapshot.Record) error
}
