package snapshot

import "context"

// Snapshot is an immutable point-in-time mapping from identity to Record.
// It is never mutated after construction; each read produces a fresh,
// independent instance so that concurrent runs cannot contaminate each
// other's inputs.
type Snapshot struct {
	location string
	records  map[string]Record
}

// Reader loads a point-in-time Snapshot from a backing store. Both source
// and destination snapshots are loaded through this interface regardless of
// backing technology, because the reconciler must not depend on storage
// specifics. Implementations are read-only.
type Reader interface {
	Read(ctx context.Context, location string) (*Snapshot, error)
}

// Builder accumulates records into a Snapshot, enforcing the snapshot
// invariants (valid schema, unique identities) on every Add.
type Builder struct {
	location string
	records  map[string]Record
}

// NewBuilder creates a builder for a snapshot at the given location.
// sizeHint pre-sizes the index; zero is fine.
func NewBuilder(location string, sizeHint int) *Builder {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Builder{
		location: location,
		records:  make(map[string]Record, sizeHint),
	}
}

// Add validates and indexes one record. It fails with SchemaError on a
// malformed record and DuplicateIdentityError when the identity was
// already added.
func (b *Builder) Add(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if _, exists := b.records[rec.Identity]; exists {
		return &DuplicateIdentityError{Identity: rec.Identity, Location: b.location}
	}
	b.records[rec.Identity] = rec
	return nil
}

// Snapshot finalizes the builder. The builder must not be reused afterwards.
func (b *Builder) Snapshot() *Snapshot {
	s := &Snapshot{location: b.location, records: b.records}
	b.records = nil
	return s
}

// New builds a Snapshot from a record slice, applying the same validation
// as Builder.Add.
func New(location string, recs []Record) (*Snapshot, error) {
	b := NewBuilder(location, len(recs))
	for _, rec := range recs {
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	return b.Snapshot(), nil
}

// Location returns where this snapshot was read from.
func (s *Snapshot) Location() string { return s.location }

// Len returns the number of identities in the snapshot.
func (s *Snapshot) Len() int { return len(s.records) }

// Get returns the record for an identity, if present.
func (s *Snapshot) Get(identity string) (Record, bool) {
	rec, ok := s.records[identity]
	return rec, ok
}

// Records exposes the identity index for single-pass iteration.
// Callers must treat the returned map as read-only.
func (s *Snapshot) Records() map[string]Record { return s.records }
