package reconcile

import "fmt"

// InvariantViolation reports a snapshot that breaks the reconciler's
// preconditions. Upstream validation should make this unreachable; when it
// fires anyway it is a defect, always fatal, never retried — silently
// picking one of two conflicting records would corrupt the audit trail.
type InvariantViolation struct {
	Location string
	Identity string
	Reason   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("reconcile invariant violated in snapshot %q (identity %q): %s",
		e.Location, e.Identity, e.Reason)
}

// ErrorCode implements the metrics error-code contract.
func (e *InvariantViolation) ErrorCode() string { return "invariant_violation" }
