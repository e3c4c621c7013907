package reconcile

import (
	"time"

	"syncbench/core/snapshot"
)

// UpdateType classifies an identity's change between source and destination.
type UpdateType string

const (
	// UpdateTypeInsert marks an identity present only in the source.
	UpdateTypeInsert UpdateType = "insert"
	// UpdateTypeUpdate marks an identity where the source is newer.
	UpdateTypeUpdate UpdateType = "update"
	// UpdateTypeDelete marks an identity present only in the destination.
	UpdateTypeDelete UpdateType = "delete"
	// UpdateTypeAnomaly marks an identity where the destination is newer
	// than the presumed-authoritative source. Counted and logged, never
	// silently resolved.
	UpdateTypeAnomaly UpdateType = "anomaly"
)

// Valid reports whether t is one of the four known classifications.
func (t UpdateType) Valid() bool {
	switch t {
	case UpdateTypeInsert, UpdateTypeUpdate, UpdateTypeDelete, UpdateTypeAnomaly:
		return true
	default:
		return false
	}
}

// Event is one immutable, append-only entry of the destination event log.
// RunID and EmittedAt are stamped by the write path, not by the reconciler,
// which keeps reconciliation a pure function of its two snapshots.
type Event struct {
	// Identity is the entity this event classifies.
	Identity string `json:"identity"`

	// UpdateType is a deterministic function of the record pair.
	UpdateType UpdateType `json:"update_type"`

	// SourceRecord is the source-side record, nil for deletes.
	SourceRecord *snapshot.Record `json:"source_record,omitempty"`

	// DestRecord is the destination-side record, nil for inserts.
	DestRecord *snapshot.Record `json:"dest_record,omitempty"`

	// RunID identifies the benchmark run that emitted this event.
	RunID string `json:"run_id"`

	// EmittedAt is when the event was appended to the log.
	EmittedAt time.Time `json:"emitted_at"`
}

// Stamp assigns run metadata to a batch of events in place.
func Stamp(events []Event, runID string, emittedAt time.Time) {
	for i := range events {
		events[i].RunID = runID
		events[i].EmittedAt = emittedAt
	}
}

// Counts aggregates one reconciliation's classifications. NoOps counts
// identities present on both sides with equal timestamps; they emit no
// event and are tracked only so the union invariant can be checked.
type Counts struct {
	Inserts   int `json:"insert"`
	Updates   int `json:"update"`
	Deletes   int `json:"delete"`
	Anomalies int `json:"anomaly"`
	NoOps     int `json:"noop"`
}

// Classified returns the number of identities that produced an event.
func (c Counts) Classified() int {
	return c.Inserts + c.Updates + c.Deletes + c.Anomalies
}

// Total returns the number of identities visited, classified or not.
// It always equals the size of the union of the two identity sets.
func (c Counts) Total() int {
	return c.Classified() + c.NoOps
}

// Result bundles the classified event set with its counts.
type Result struct {
	Events []Event
	Counts Counts
}
