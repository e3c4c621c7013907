package snapshot

import "time"

// Record is one row of a snapshot: a uniquely identified entity, its
// last-modification time, and an opaque payload. The timestamp is the
// sole ordering signal used during reconciliation.
type Record struct {
	// Identity uniquely identifies the entity within one snapshot.
	Identity string `json:"identity"`

	// Timestamp is the last-modification time, always timezone-aware.
	Timestamp time.Time `json:"timestamp"`

	// Payload is opaque to the reconciliation engine.
	Payload string `json:"payload"`
}

// Validate checks the record-level schema invariants.
func (r Record) Validate() error {
	if r.Identity == "" {
		return &SchemaError{Field: "identity", Reason: "missing"}
	}
	if r.Timestamp.IsZero() {
		return &SchemaError{Field: "timestamp", Reason: "missing"}
	}
	return nil
}

// ParseTimestamp parses a wire timestamp. The value must carry an explicit
// UTC offset (RFC 3339); timezone-naive values are rejected with a
// SchemaError rather than silently localized, because naive timestamps have
// previously broken compatibility with downstream stores.
func ParseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &SchemaError{Field: "timestamp", Reason: "missing"}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, &SchemaError{
			Field:  "timestamp",
			Reason: "not a timezone-aware RFC 3339 value: " + raw,
		}
	}
	return ts, nil
}

// FormatTimestamp renders a timestamp in the canonical wire form.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(time.RFC3339Nano)
}
