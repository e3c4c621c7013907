package reconcile

import (
	"sort"

	"syncbench/core/snapshot"
)

// Reconcile classifies every identity in the union of the two snapshots:
//
//   - only in source               -> insert
//   - only in destination          -> delete
//   - both, source newer           -> update (source wins)
//   - both, destination newer      -> anomaly (counted, never resolved)
//   - both, equal timestamps       -> no-op (silent, not an anomaly)
//
// Tie-break is strict inequality both ways. The pass is O(|source|+|dest|)
// over identity-indexed maps; no nested scans. Reconcile is pure and
// deterministic: identical inputs yield identical event sets, and events
// are returned sorted by identity (then update type) so output order never
// depends on map iteration.
//
// Reconcile never fails on data content — anomalies are data, not errors.
// It fails only on contract violations from upstream, re-validated here
// defensively, with an InvariantViolation.
func Reconcile(source, dest *snapshot.Snapshot) (*Result, error) {
	if err := checkInvariants(source); err != nil {
		return nil, err
	}
	if err := checkInvariants(dest); err != nil {
		return nil, err
	}

	res := &Result{
		Events: make([]Event, 0, source.Len()+dest.Len()),
	}

	for identity, srcRec := range source.Records() {
		destRec, inDest := dest.Get(identity)
		if !inDest {
			src := srcRec
			res.Events = append(res.Events, Event{
				Identity:     identity,
				UpdateType:   UpdateTypeInsert,
				SourceRecord: &src,
			})
			res.Counts.Inserts++
			continue
		}

		switch {
		case srcRec.Timestamp.After(destRec.Timestamp):
			src, dst := srcRec, destRec
			res.Events = append(res.Events, Event{
				Identity:     identity,
				UpdateType:   UpdateTypeUpdate,
				SourceRecord: &src,
				DestRecord:   &dst,
			})
			res.Counts.Updates++
		case destRec.Timestamp.After(srcRec.Timestamp):
			src, dst := srcRec, destRec
			res.Events = append(res.Events, Event{
				Identity:     identity,
				UpdateType:   UpdateTypeAnomaly,
				SourceRecord: &src,
				DestRecord:   &dst,
			})
			res.Counts.Anomalies++
		default:
			// Equal timestamps: not a change, must not be double-counted.
			res.Counts.NoOps++
		}
	}

	for identity, destRec := range dest.Records() {
		if _, inSource := source.Get(identity); inSource {
			continue
		}
		dst := destRec
		res.Events = append(res.Events, Event{
			Identity:   identity,
			UpdateType: UpdateTypeDelete,
			DestRecord: &dst,
		})
		res.Counts.Deletes++
	}

	sort.Slice(res.Events, func(i, j int) bool {
		if res.Events[i].Identity != res.Events[j].Identity {
			return res.Events[i].Identity < res.Events[j].Identity
		}
		return res.Events[i].UpdateType < res.Events[j].UpdateType
	})

	return res, nil
}

// checkInvariants re-validates what the snapshot builder already enforced.
func checkInvariants(s *snapshot.Snapshot) error {
	for identity, rec := range s.Records() {
		if identity != rec.Identity {
			return &InvariantViolation{
				Location: s.Location(),
				Identity: identity,
				Reason:   "index key does not match record identity " + rec.Identity,
			}
		}
		if err := rec.Validate(); err != nil {
			return &InvariantViolation{
				Location: s.Location(),
				Identity: identity,
				Reason:   err.Error(),
			}
		}
	}
	return nil
}
