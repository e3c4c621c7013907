package snapshot

import "fmt"

// DuplicateIdentityError reports more than one record per identity inside
// a single snapshot. Snapshots are assumed pre-deduplicated; the reader's
// job is validation, not deduplication.
type DuplicateIdentityError struct {
	Identity string
	Location string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("duplicate identity %q in snapshot %q", e.Identity, e.Location)
}

// ErrorCode implements the metrics error-code contract.
func (e *DuplicateIdentityError) ErrorCode() string { return "duplicate_identity" }

// SchemaError reports a missing or ambiguous required field, e.g. a
// timezone-naive timestamp. Such values are rejected, never coerced.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on field %q: %s", e.Field, e.Reason)
}

// ErrorCode implements the metrics error-code contract.
func (e *SchemaError) ErrorCode() string { return "schema_error" }
