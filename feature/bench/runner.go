package bench

import (
	"context"
	"fmt"
	"sort"
	"time"

	"syncbench/core/logger"
	"syncbench/core/metrics"
	"syncbench/core/reconcile"
	"syncbench/core/snapshot"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"syncbench/feature/dest"
	"syncbench/feature/source"
)

// State is the runner's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Runner executes one parameter set's strategy exactly once. It is
// single-use: a second Run on the same runner is refused, because the
// run ID and its metrics row are already spoken for.
type Runner struct {
	params   ParameterSet
	src      source.Source
	mat      source.Materializer
	dst      dest.Destination
	recorder *metrics.Recorder
	logger   *zap.Logger

	runID string
	state State
	now   func() time.Time
}

// NewRunner wires a runner for one scenario. A fresh run ID is minted
// here; everything the run writes or logs carries it.
func NewRunner(params ParameterSet, src source.Source, mat source.Materializer, dst dest.Destination, recorder *metrics.Recorder, logg *zap.Logger) *Runner {
	runID := uuid.NewString()
	return &Runner{
		params:   params,
		src:      src,
		mat:      mat,
		dst:      dst,
		recorder: recorder,
		logger:   logger.WithRunID(logg, runID),
		runID:    runID,
		state:    StateIdle,
		now:      time.Now,
	}
}

// RunID returns the identifier minted for this runner.
func (r *Runner) RunID() string { return r.runID }

// State returns the runner's lifecycle position.
func (r *Runner) State() State { return r.state }

func (r *Runner) baseRow(controller string, excluded bool) metrics.Row {
	return metrics.Row{
		RunID:                 r.runID,
		ControllerName:        controller,
		Strategy:              r.params.UpdateStrategy,
		SourceType:            r.src.Type(),
		DestinationType:       r.dst.Type(),
		IsColdRun:             r.params.IsColdRun,
		ExcludedFromBenchmark: excluded,
		Seed:                  r.params.Seed,
	}
}

// Materialize seeds source and destination with the dataset. Its timing
// is recorded on its own excluded row so setup cost never contaminates
// strategy comparisons.
func (r *Runner) Materialize(ctx context.Context, ds *Dataset) error {
	if r.state != StateIdle {
		return fmt.Errorf("runner %s: materialize in state %q", r.runID, r.state)
	}

	scope := r.recorder.Begin(r.baseRow("materialize", true))

	err := func() error {
		if err := r.mat.WriteCurrent(ctx, ds.SourceRows); err != nil {
			return err
		}
		if err := r.mat.WriteUpdates(ctx, ds.UpdateRows); err != nil {
			return err
		}
		return r.dst.Overwrite(ctx, ds.DestRows)
	}()
	if err != nil {
		r.state = StateFailed
		_ = scope.Fail(ctx, err)
		return err
	}

	written := int64(len(ds.SourceRows) + len(ds.UpdateRows) + len(ds.DestRows))
	scope.Row().RowsWritten = written
	r.logger.Info("Dataset materialized",
		zap.String("set", r.params.Name),
		zap.Int("dest_rows", len(ds.DestRows)),
		zap.Int("source_rows", len(ds.SourceRows)),
		zap.Int("update_rows", len(ds.UpdateRows)),
	)
	return scope.Complete(ctx)
}

// Run executes the parameter set's strategy and returns the finalized
// metrics row. The timer opens before the strategy's first read and
// closes after its last write.
func (r *Runner) Run(ctx context.Context) (*metrics.Row, error) {
	if r.state != StateIdle {
		return nil, fmt.Errorf("runner %s: run in state %q", r.runID, r.state)
	}
	r.state = StateRunning
	r.logger.Info("Run started",
		zap.String("set", r.params.Name),
		zap.String("strategy", r.params.UpdateStrategy),
	)

	scope := r.recorder.Begin(r.baseRow("runner", false))

	var err error
	switch r.params.UpdateStrategy {
	case StrategyFullRefresh:
		err = r.runFullRefresh(ctx, scope)
	case StrategyFullCompare:
		err = r.runFullCompare(ctx, scope)
	case StrategyIncremental:
		err = r.runIncremental(ctx, scope)
	default:
		err = fmt.Errorf("unknown update_strategy %q", r.params.UpdateStrategy)
	}

	if err != nil {
		r.state = StateFailed
		r.logger.Error("Run failed", zap.String("set", r.params.Name), zap.Error(err))
		_ = scope.Fail(ctx, err)
		return scope.Row(), err
	}

	r.state = StateCompleted
	if flushErr := scope.Complete(ctx); flushErr != nil {
		return scope.Row(), flushErr
	}
	r.logger.Info("Run completed",
		zap.String("set", r.params.Name),
		zap.Float64("duration_s", scope.Row().DurationS),
	)
	return scope.Row(), nil
}

// runFullRefresh reads the source's full state and overwrites the
// destination with it. No reconciliation, no event log.
func (r *Runner) runFullRefresh(ctx context.Context, scope *metrics.Scope) error {
	snap, err := r.src.Current(ctx)
	if err != nil {
		return err
	}
	scope.Row().RowsRead = int64(snap.Len())

	recs := sortedRecords(snap)
	if err := r.dst.Overwrite(ctx, recs); err != nil {
		return err
	}
	scope.Row().RowsWritten = int64(len(recs))
	return nil
}

// runFullCompare reads both sides, reconciles, and appends the stamped
// event batch atomically.
func (r *Runner) runFullCompare(ctx context.Context, scope *metrics.Scope) error {
	srcSnap, err := r.src.Current(ctx)
	if err != nil {
		return err
	}
	dstSnap, err := r.dst.Current(ctx)
	if err != nil {
		return err
	}

	res, err := reconcile.Reconcile(srcSnap, dstSnap)
	if err != nil {
		return err
	}

	events := res.Events
	if r.params.AnomalyPolicy == AnomalyPolicyRepair {
		events = append(events, repairEvents(res.Events)...)
	}
	reconcile.Stamp(events, r.runID, r.now().UTC())

	if err := r.dst.AppendEvents(ctx, events); err != nil {
		return err
	}

	row := scope.Row()
	row.RowsRead = int64(res.Counts.Classified())
	row.RowsWritten = int64(len(events))
	row.RowsInserted = int64(res.Counts.Inserts)
	row.RowsUpdated = int64(res.Counts.Updates)
	row.RowsDeleted = int64(res.Counts.Deletes)
	row.AnomalyCount = int64(res.Counts.Anomalies)

	for _, ev := range res.Events {
		if ev.UpdateType == reconcile.UpdateTypeAnomaly {
			r.logger.Warn("Destination newer than source",
				zap.String("identity", ev.Identity),
				zap.Time("source_ts", ev.SourceRecord.Timestamp),
				zap.Time("dest_ts", ev.DestRecord.Timestamp),
				zap.String("policy", r.params.AnomalyPolicy),
			)
		}
	}
	return nil
}

// runIncremental blindly appends the source's update slice. Nothing is
// read from the destination, nothing is reconciled; the resulting drift
// is what this strategy trades for speed.
func (r *Runner) runIncremental(ctx context.Context, scope *metrics.Scope) error {
	updates, err := r.src.Updates(ctx)
	if err != nil {
		return err
	}
	scope.Row().RowsRead = int64(updates.Len())

	recs := sortedRecords(updates)
	if err := r.dst.AppendRecords(ctx, recs); err != nil {
		return err
	}
	scope.Row().RowsWritten = int64(len(recs))
	scope.Row().RowsInserted = int64(len(recs))
	return nil
}

// repairEvents derives one correcting update per anomaly, reasserting
// the source record. The anomaly event itself stays in the log; the
// repair is additional history, not a rewrite.
func repairEvents(events []reconcile.Event) []reconcile.Event {
	var repairs []reconcile.Event
	for _, ev := range events {
		if ev.UpdateType != reconcile.UpdateTypeAnomaly {
			continue
		}
		repairs = append(repairs, reconcile.Event{
			Identity:     ev.Identity,
			UpdateType:   reconcile.UpdateTypeUpdate,
			SourceRecord: ev.SourceRecord,
			DestRecord:   ev.DestRecord,
		})
	}
	return repairs
}

// sortedRecords flattens a snapshot into an identity-ordered slice so
// writes are deterministic.
func sortedRecords(s *snapshot.Snapshot) []snapshot.Record {
	recs := make([]snapshot.Record, 0, s.Len())
	for _, rec := range s.Records() {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Identity < recs[j].Identity })
	return recs
}
