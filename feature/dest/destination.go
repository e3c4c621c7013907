package dest

import (
	"context"
	"fmt"
	"strings"

	"syncbench/core/reconcile"
	"syncbench/core/snapshot"
)

// Destination is the consuming side of a sync run. Each strategy uses a
// different write shape:
//   - Full Refresh calls Overwrite with the source's full current state.
//   - Full Compare calls AppendEvents with the reconciler's stamped batch.
//   - Incremental calls AppendRecords with the source's update slice,
//     blindly, without reading destination state first.
type Destination interface {
	// Type names the backing technology for metrics dimensions.
	Type() string
	// Current reads the destination's current state. A destination that
	// has never been written yields an empty snapshot, not an error.
	Current(ctx context.Context) (*snapshot.Snapshot, error)
	// Overwrite atomically replaces the destination's current state.
	Overwrite(ctx context.Context, recs []snapshot.Record) error
	// AppendRecords appends rows without inspecting existing state.
	// Duplicate identities are not detected here; that drift is the
	// documented cost of the blind-append strategy.
	AppendRecords(ctx context.Context, recs []snapshot.Record) error
	// AppendEvents appends one stamped event batch as a single atomic
	// unit: either every event lands or none do.
	AppendEvents(ctx context.Context, events []reconcile.Event) error
}

// SchemaMismatchError reports a destination whose schema cannot accept
// the event batch. The append is refused before any row is written.
type SchemaMismatchError struct {
	Location string
	Missing  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("destination %q schema mismatch: missing columns [%s]",
		e.Location, strings.Join(e.Missing, ", "))
}

// ErrorCode implements metrics.Coder.
func (e *SchemaMismatchError) ErrorCode() string { return "schema_mismatch" }

// validateEvents rejects batches that were not stamped or carry an
// unknown classification. The event log is append-only and immutable,
// so a malformed entry could never be corrected after the fact.
func validateEvents(location string, events []reconcile.Event) error {
	for _, ev := range events {
		if !ev.UpdateType.Valid() {
			return &reconcile.InvariantViolation{
				Location: location,
				Identity: ev.Identity,
				Reason:   fmt.Sprintf("unknown update type %q", ev.UpdateType),
			}
		}
		if ev.RunID == "" || ev.EmittedAt.IsZero() {
			return &reconcile.InvariantViolation{
				Location: location,
				Identity: ev.Identity,
				Reason:   "event batch appended without run stamp",
			}
		}
	}
	return nil
}
